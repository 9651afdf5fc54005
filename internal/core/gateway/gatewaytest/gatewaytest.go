// Package gatewaytest provides an in-memory gateway that records calls and
// can be told to fail specific operations.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/colonyops/wiz/internal/core/gateway"
)

// Operation names accepted by Fail.
const (
	OpCreateQuote       = "CreateQuote"
	OpCreateDesignJob   = "CreateDesignJob"
	OpCreateOrg         = "CreateOrganization"
	OpCreateContact     = "CreateContact"
	OpCreateFulfillment = "CreateFulfillmentOrder"
	OpCreateMerchBundle = "CreateMerchBundle"
	OpCreateColorSpec   = "CreateColorSpec"
	OpUploadAsset       = "UploadAsset"
	OpPutAsset          = "PutAsset"
)

// Gateway is an in-memory gateway.Gateway.
type Gateway struct {
	mu      sync.Mutex
	seq     int
	now     time.Time
	fail    map[string]error
	calls   []string
	records []gateway.Record

	Orgs    []gateway.OrganizationRecord
	Quotes  []gateway.QuoteRecord
	Uploads map[string][]byte
}

var _ gateway.Gateway = (*Gateway)(nil)

// New returns an empty gateway with a fixed clock.
func New() *Gateway {
	return &Gateway{
		now:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		fail:    map[string]error{},
		Uploads: map[string][]byte{},
	}
}

// Fail makes every later call to op return err. A nil err clears it.
func (g *Gateway) Fail(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.fail, op)
		return
	}
	g.fail[op] = err
}

// Calls returns the operations invoked so far, in order.
func (g *Gateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// CallCount returns how many times op was invoked.
func (g *Gateway) CallCount(op string) int {
	n := 0
	for _, c := range g.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Records returns all stored records.
func (g *Gateway) Records() []gateway.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.Record(nil), g.records...)
}

// begin records the call and returns the injected failure, if any.
func (g *Gateway) begin(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, op)
	return g.fail[op]
}

func (g *Gateway) store(kind gateway.Kind, prefix, title string, payload any) (string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("%s-%d", kind, g.seq)
	code := ""
	if prefix != "" {
		code = fmt.Sprintf("%s-%06d", prefix, g.seq)
	}
	raw, _ := json.Marshal(payload)
	g.records = append(g.records, gateway.Record{
		ID: id, Kind: kind, Code: code, Title: title,
		Status: gateway.StatusPending, CreatedAt: g.now, Payload: raw,
	})
	return id, code
}

func (g *Gateway) CreateQuote(ctx context.Context, p gateway.QuotePayload) (gateway.QuoteRecord, error) {
	if err := g.begin(OpCreateQuote); err != nil {
		return gateway.QuoteRecord{}, err
	}
	id, code := g.store(gateway.KindQuote, "Q", p.OrganizationName, p)
	rec := gateway.QuoteRecord{ID: id, QuoteCode: code, CreatedAt: g.now, QuotePayload: p}
	g.mu.Lock()
	g.Quotes = append(g.Quotes, rec)
	g.mu.Unlock()
	return rec, nil
}

func (g *Gateway) CreateDesignJob(ctx context.Context, p gateway.DesignJobPayload) (gateway.DesignJobRecord, error) {
	if err := g.begin(OpCreateDesignJob); err != nil {
		return gateway.DesignJobRecord{}, err
	}
	id, code := g.store(gateway.KindDesignJob, "DJ", p.OrganizationName, p)
	return gateway.DesignJobRecord{ID: id, JobCode: code, Status: gateway.StatusPending, CreatedAt: g.now, DesignJobPayload: p}, nil
}

func (g *Gateway) CreateOrganization(ctx context.Context, p gateway.OrganizationPayload) (gateway.OrganizationRecord, error) {
	if err := g.begin(OpCreateOrg); err != nil {
		return gateway.OrganizationRecord{}, err
	}
	id, _ := g.store(gateway.KindOrganization, "", p.Name, p)
	rec := gateway.OrganizationRecord{ID: id, CreatedAt: g.now, OrganizationPayload: p}
	g.mu.Lock()
	g.Orgs = append(g.Orgs, rec)
	g.mu.Unlock()
	return rec, nil
}

func (g *Gateway) CreateContact(ctx context.Context, p gateway.ContactPayload) (gateway.ContactRecord, error) {
	if err := g.begin(OpCreateContact); err != nil {
		return gateway.ContactRecord{}, err
	}
	id, _ := g.store(gateway.KindContact, "", p.Name, p)
	return gateway.ContactRecord{ID: id, CreatedAt: g.now, ContactPayload: p}, nil
}

func (g *Gateway) CreateFulfillmentOrder(ctx context.Context, p gateway.FulfillmentPayload) (gateway.FulfillmentRecord, error) {
	if err := g.begin(OpCreateFulfillment); err != nil {
		return gateway.FulfillmentRecord{}, err
	}
	id, code := g.store(gateway.KindFulfillment, "FO", p.QuoteCode, p)
	return gateway.FulfillmentRecord{ID: id, ExternalOrderID: code, Status: gateway.StatusSubmitted, CreatedAt: g.now, FulfillmentPayload: p}, nil
}

func (g *Gateway) CreateMerchBundle(ctx context.Context, p gateway.MerchBundlePayload) (gateway.MerchBundleRecord, error) {
	if err := g.begin(OpCreateMerchBundle); err != nil {
		return gateway.MerchBundleRecord{}, err
	}
	id, code := g.store(gateway.KindMerchBundle, "MB", p.OrganizationName, p)
	total := 0
	for _, prod := range p.Products {
		total += prod.Quantity
	}
	return gateway.MerchBundleRecord{
		ID: id, BundleCode: code, Status: gateway.StatusPending,
		TotalAllocated: total, CreatedAt: g.now, MerchBundlePayload: p,
	}, nil
}

func (g *Gateway) CreateColorSpec(ctx context.Context, p gateway.ColorSpecPayload) (gateway.ColorSpecRecord, error) {
	if err := g.begin(OpCreateColorSpec); err != nil {
		return gateway.ColorSpecRecord{}, err
	}
	id, code := g.store(gateway.KindColorSpec, "CS", p.Name, p)
	return gateway.ColorSpecRecord{ID: id, SpecCode: code, CreatedAt: g.now, ColorSpecPayload: p}, nil
}

func (g *Gateway) UploadAsset(ctx context.Context, meta gateway.AssetMeta) (gateway.UploadTicket, error) {
	if err := g.begin(OpUploadAsset); err != nil {
		return gateway.UploadTicket{}, err
	}
	id, _ := g.store(gateway.KindAsset, "", meta.Filename, meta)
	return gateway.UploadTicket{
		UploadURL:         "mem://uploads/" + id,
		UploadID:          id,
		SanitizedFilename: meta.Filename,
	}, nil
}

func (g *Gateway) PutAsset(ctx context.Context, uploadURL string, r io.Reader) error {
	if err := g.begin(OpPutAsset); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.Uploads[uploadURL] = data
	g.mu.Unlock()
	return nil
}

func (g *Gateway) ListOrganizations(ctx context.Context) ([]gateway.OrganizationRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.OrganizationRecord(nil), g.Orgs...), nil
}

func (g *Gateway) ListQuotes(ctx context.Context) ([]gateway.QuoteRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.QuoteRecord(nil), g.Quotes...), nil
}

func (g *Gateway) ListRecords(ctx context.Context, kind gateway.Kind) ([]gateway.Record, error) {
	var out []gateway.Record
	for _, r := range g.Records() {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}
