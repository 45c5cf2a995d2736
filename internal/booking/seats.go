package booking

import (
    "fmt"
    "sort"

    "github.com/iliyamo/flight-ticket-booking/internal/model"
)

// FreeSeats computes the free seat numbers of one flight cabin as the
// set {1..capacity} minus the seat numbers already assigned to the
// cabin's tickets.  capacity is the airplane's seat count for the
// class, so a seat number stays valid for its ticket's lifetime even
// as the availability counter moves.  The result is sorted ascending
// and empty (never nil) when every seat is taken.
func FreeSeats(capacity uint32, taken []uint32) []uint32 {
    used := make(map[uint32]struct{}, len(taken))
    for _, n := range taken {
        used[n] = struct{}{}
    }
    free := make([]uint32, 0, capacity)
    for n := uint32(1); n <= capacity; n++ {
        if _, ok := used[n]; !ok {
            free = append(free, n)
        }
    }
    sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
    return free
}

// ValidateSeatClass rejects anything but economy and business.
func ValidateSeatClass(class model.SeatClass) error {
    if !class.Valid() {
        return &ValidationError{Msg: fmt.Sprintf("unknown seat class %q: must be economy or business", class)}
    }
    return nil
}

// ValidateCreateTicket checks a new ticket before it is inserted: the
// class must be known and the flight must still have availability in
// that cabin.  A seat number is NOT required at creation time; seats
// are picked later during order customization.
//
// availableForClass is the flight's current counter for the class.
// The caller must still perform the actual decrement as a conditional
// UPDATE inside the booking transaction; this check only produces a
// friendly error before any write is attempted.
func ValidateCreateTicket(class model.SeatClass, availableForClass uint32) error {
    if err := ValidateSeatClass(class); err != nil {
        return err
    }
    if availableForClass == 0 {
        return &ValidationError{Msg: fmt.Sprintf("no available %s seats for this flight", class)}
    }
    return nil
}

// ValidateSeatNumber checks a proposed seat assignment during the
// customization or checkout step.  The number must fall inside
// [1, capacity] for the cabin and must not already belong to another
// ticket of the same flight and class.  takenByOthers holds the seat
// numbers of every other active ticket in the cabin.
func ValidateSeatNumber(class model.SeatClass, seatNumber, capacity uint32, takenByOthers []uint32) error {
    if err := ValidateSeatClass(class); err != nil {
        return err
    }
    if seatNumber < 1 || seatNumber > capacity {
        return &ValidationError{Msg: fmt.Sprintf("seat number %d is out of range for %s class (1-%d)", seatNumber, class, capacity)}
    }
    for _, n := range takenByOthers {
        if n == seatNumber {
            return &ValidationError{Msg: fmt.Sprintf("seat number %d is already taken in %s class", seatNumber, class)}
        }
    }
    return nil
}

// ReclamationNotice renders the human-readable message appended to a
// basket whose placeholder ticket was released to another customer.
func ReclamationNotice(class model.SeatClass, from, to string) string {
    return fmt.Sprintf("Your %s ticket for the flight %s - %s was released to another customer.", class, from, to)
}

// ExpiryNotice renders the message appended to a basket whose ticket
// exceeded the hold window and was released by the background sweep.
func ExpiryNotice(class model.SeatClass, from, to string) string {
    return fmt.Sprintf("Your %s ticket for the flight %s - %s expired and was released.", class, from, to)
}
