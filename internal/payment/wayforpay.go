// Package payment implements the WayForPay gateway adapter.  The core
// treats it as two operations: create a signed invoice and get back a
// payment URL, and verify the signature of an inbound payment
// callback.  Requests are authenticated with an HMAC-MD5 over a
// semicolon-joined field list, per the gateway's protocol.
package payment

import (
    "bytes"
    "context"
    "crypto/hmac"
    "crypto/md5"
    "encoding/hex"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
)

// Config carries the merchant credentials and endpoints used by the
// adapter.  All fields come from environment configuration.
type Config struct {
    MerchantAccount string // merchant account name issued by the gateway
    MerchantDomain  string // domain registered with the merchant account
    SecretKey       string // key for the HMAC-MD5 signatures
    APIURL          string // gateway API endpoint
    ServiceURL      string // our callback URL passed along with the invoice
}

// Client talks to the WayForPay API.  The zero value is not usable;
// construct it with NewClient.
type Client struct {
    cfg  Config
    http *http.Client
}

// NewClient builds a Client from config with a bounded HTTP timeout.
func NewClient(cfg Config) *Client {
    return &Client{
        cfg:  cfg,
        http: &http.Client{Timeout: 15 * time.Second},
    }
}

// Invoice is the successful result of CreateInvoice: the reference
// the gateway will echo back in callbacks and the URL the customer is
// redirected to for payment.
type Invoice struct {
    OrderReference string `json:"orderReference"`
    InvoiceURL     string `json:"invoiceUrl"`
}

// createInvoiceRequest mirrors the gateway's CREATE_INVOICE payload.
// Product fields are parallel arrays per the wire format.
type createInvoiceRequest struct {
    TransactionType    string    `json:"transactionType"`
    MerchantAccount    string    `json:"merchantAccount"`
    MerchantDomainName string    `json:"merchantDomainName"`
    MerchantSignature  string    `json:"merchantSignature"`
    APIVersion         int       `json:"apiVersion"`
    Language           string    `json:"language"`
    ServiceURL         string    `json:"serviceUrl"`
    OrderReference     string    `json:"orderReference"`
    OrderDate          int64     `json:"orderDate"`
    Amount             string    `json:"amount"`
    Currency           string    `json:"currency"`
    OrderTimeout       int       `json:"orderTimeout"`
    ProductName        []string  `json:"productName"`
    ProductPrice       []string  `json:"productPrice"`
    ProductCount       []int     `json:"productCount"`
    PaymentSystems     string    `json:"paymentSystems"`
    ClientEmail        string    `json:"clientEmail"`
    OrderID            uint64    `json:"order_id"`
}

type createInvoiceResponse struct {
    Reason     string `json:"reason"`
    ReasonCode int    `json:"reasonCode"`
    InvoiceURL string `json:"invoiceUrl"`
}

// signHMAC computes the hex HMAC-MD5 of the semicolon-joined fields.
func signHMAC(fields []string, secret string) string {
    mac := hmac.New(md5.New, []byte(secret))
    mac.Write([]byte(strings.Join(fields, ";")))
    return hex.EncodeToString(mac.Sum(nil))
}

// amountString renders cents as the decimal amount the gateway
// expects, e.g. 12550 -> "125.50".
func amountString(cents uint64) string {
    return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// NewOrderReference derives a "DH" + 10-digit reference from a UUID.
// The gateway requires a reference unique per merchant account.
// Callers persist the reference on the order before requesting the
// invoice so a later callback can always be matched back.
func NewOrderReference() string {
    id := uuid.New().ID() // first four bytes as uint32
    return fmt.Sprintf("DH%010d", id)
}

// CreateInvoice asks the gateway for a hosted invoice covering the
// order.  orderRef is the reference already stored on the order (see
// NewOrderReference); amountCents is the order total; ticketCount is
// reported as the product quantity.  On success the returned Invoice
// carries the payment URL.  Transport and gateway-side failures are
// returned as errors; callers mark the order payment_failed and
// surface the failure to the customer without retrying automatically.
func (c *Client) CreateInvoice(ctx context.Context, orderRef string, amountCents uint64, email string, ticketCount int, orderID uint64) (*Invoice, error) {
    ref := orderRef
    orderDate := time.Now().UTC().Unix()
    amount := amountString(amountCents)

    req := createInvoiceRequest{
        TransactionType:    "CREATE_INVOICE",
        MerchantAccount:    c.cfg.MerchantAccount,
        MerchantDomainName: c.cfg.MerchantDomain,
        APIVersion:         1,
        Language:           "en",
        ServiceURL:         c.cfg.ServiceURL,
        OrderReference:     ref,
        OrderDate:          orderDate,
        Amount:             amount,
        Currency:           "UAH",
        OrderTimeout:       86400,
        ProductName:        []string{"Air Ticket"},
        ProductPrice:       []string{amount},
        ProductCount:       []int{ticketCount},
        PaymentSystems:     "card;privat24",
        ClientEmail:        email,
        OrderID:            orderID,
    }

    // Signature covers merchant identity, reference, date, amount,
    // currency, then the product arrays in wire order.
    fields := []string{
        req.MerchantAccount,
        req.MerchantDomainName,
        req.OrderReference,
        fmt.Sprintf("%d", req.OrderDate),
        req.Amount,
        req.Currency,
    }
    fields = append(fields, req.ProductName...)
    for _, n := range req.ProductCount {
        fields = append(fields, fmt.Sprintf("%d", n))
    }
    fields = append(fields, req.ProductPrice...)
    req.MerchantSignature = signHMAC(fields, c.cfg.SecretKey)

    body, err := json.Marshal(req)
    if err != nil {
        return nil, fmt.Errorf("wayforpay: marshal request: %w", err)
    }
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
    if err != nil {
        return nil, fmt.Errorf("wayforpay: build request: %w", err)
    }
    httpReq.Header.Set("Content-Type", "application/json")

    resp, err := c.http.Do(httpReq)
    if err != nil {
        return nil, fmt.Errorf("wayforpay: send request: %w", err)
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("wayforpay: unexpected status %d", resp.StatusCode)
    }
    var out createInvoiceResponse
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return nil, fmt.Errorf("wayforpay: decode response: %w", err)
    }
    if out.InvoiceURL == "" {
        return nil, fmt.Errorf("wayforpay: invoice rejected: %s (code %d)", out.Reason, out.ReasonCode)
    }
    return &Invoice{OrderReference: ref, InvoiceURL: out.InvoiceURL}, nil
}

// Callback is the subset of the gateway's payment notification the
// core cares about.
type Callback struct {
    OrderReference    string `json:"orderReference"`
    TransactionStatus string `json:"transactionStatus"`
    Time              int64  `json:"time"`
    MerchantSignature string `json:"merchantSignature"`
}

// Approved reports whether the callback signals a settled payment.
func (cb Callback) Approved() bool {
    return strings.EqualFold(cb.TransactionStatus, "Approved")
}

// VerifyCallback checks the callback's HMAC-MD5 over
// `orderReference;status;time`.  A false return means the payload did
// not come from the gateway (or was tampered with) and must be
// ignored.
func (c *Client) VerifyCallback(cb Callback) bool {
    expected := signHMAC([]string{
        cb.OrderReference,
        cb.TransactionStatus,
        fmt.Sprintf("%d", cb.Time),
    }, c.cfg.SecretKey)
    return hmac.Equal([]byte(expected), []byte(strings.ToLower(cb.MerchantSignature)))
}
