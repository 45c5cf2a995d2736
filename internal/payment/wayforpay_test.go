package payment

import (
    "context"
    "crypto/hmac"
    "crypto/md5"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func hmacMD5(msg, secret string) string {
    mac := hmac.New(md5.New, []byte(secret))
    mac.Write([]byte(msg))
    return hex.EncodeToString(mac.Sum(nil))
}

func TestAmountString(t *testing.T) {
    assert.Equal(t, "0.00", amountString(0))
    assert.Equal(t, "0.05", amountString(5))
    assert.Equal(t, "125.50", amountString(12550))
    assert.Equal(t, "1000.00", amountString(100000))
}

func TestNewOrderReferenceFormat(t *testing.T) {
    ref := NewOrderReference()
    require.Len(t, ref, 12)
    assert.True(t, strings.HasPrefix(ref, "DH"))
    for _, r := range ref[2:] {
        assert.True(t, r >= '0' && r <= '9', "digit expected, got %q", r)
    }
}

func TestCreateInvoiceSignsRequest(t *testing.T) {
    const secret = "flk3409refn54t54t*FNJRET"

    var got createInvoiceRequest
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
        json.NewEncoder(w).Encode(map[string]any{"invoiceUrl": "https://secure.wayforpay.com/invoice/x"})
    }))
    defer srv.Close()

    c := NewClient(Config{
        MerchantAccount: "test_merch_n1",
        MerchantDomain:  "www.market.ua",
        SecretKey:       secret,
        APIURL:          srv.URL,
        ServiceURL:      "https://example.com/api/v1/payments/callback",
    })

    inv, err := c.CreateInvoice(context.Background(), "DH0000000042", 250075, "u@example.com", 2, 42)
    require.NoError(t, err)
    assert.Equal(t, "https://secure.wayforpay.com/invoice/x", inv.InvoiceURL)
    // The caller's reference is sent, not a fresh one: the order row
    // already carries it for callback matching.
    assert.Equal(t, "DH0000000042", got.OrderReference)
    assert.Equal(t, "DH0000000042", inv.OrderReference)

    assert.Equal(t, "CREATE_INVOICE", got.TransactionType)
    assert.Equal(t, "2500.75", got.Amount)
    assert.Equal(t, []int{2}, got.ProductCount)

    fields := []string{
        got.MerchantAccount,
        got.MerchantDomainName,
        got.OrderReference,
        // orderDate set server-side; recompute over what was sent
    }
    fields = append(fields, jsonInt(t, got.OrderDate), got.Amount, got.Currency)
    fields = append(fields, got.ProductName...)
    for _, n := range got.ProductCount {
        fields = append(fields, jsonInt(t, int64(n)))
    }
    fields = append(fields, got.ProductPrice...)
    assert.Equal(t, hmacMD5(strings.Join(fields, ";"), secret), got.MerchantSignature)
}

func jsonInt(t *testing.T, v int64) string {
    t.Helper()
    b, err := json.Marshal(v)
    require.NoError(t, err)
    return string(b)
}

func TestCreateInvoiceRejected(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        json.NewEncoder(w).Encode(map[string]any{"reason": "Merchant not found", "reasonCode": 1101})
    }))
    defer srv.Close()

    c := NewClient(Config{APIURL: srv.URL, SecretKey: "s"})
    _, err := c.CreateInvoice(context.Background(), "DH0000000001", 100, "u@example.com", 1, 1)
    require.Error(t, err)
    assert.Contains(t, err.Error(), "Merchant not found")
}

func TestVerifyCallback(t *testing.T) {
    const secret = "flk3409refn54t54t*FNJRET"
    c := NewClient(Config{SecretKey: secret})

    cb := Callback{
        OrderReference:    "DH0000000042",
        TransactionStatus: "Approved",
        Time:              1756700000,
    }
    cb.MerchantSignature = hmacMD5("DH0000000042;Approved;1756700000", secret)
    assert.True(t, c.VerifyCallback(cb))
    assert.True(t, cb.Approved())

    tampered := cb
    tampered.TransactionStatus = "Declined"
    assert.False(t, c.VerifyCallback(tampered))
    assert.False(t, tampered.Approved())

    bad := cb
    bad.MerchantSignature = "deadbeefdeadbeefdeadbeefdeadbeef"
    assert.False(t, c.VerifyCallback(bad))
}
