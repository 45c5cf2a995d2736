package model

import "time"

// Basket is a per-user holding area for tickets that have not yet
// been attached to an order.  Every user has at most one basket,
// created lazily on first booking.  Messages accumulates reclamation
// notices (one per line) addressed to the basket's owner; the basket
// view drains them.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the basket (unique).
//  Messages  – newline-separated notices queued for the owner.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Basket struct {
    ID        uint64    // baskets.id
    UserID    uint64    // baskets.user_id
    Messages  string    // baskets.messages
    CreatedAt time.Time // baskets.created_at
    UpdatedAt time.Time // baskets.updated_at
}
