package stores

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/logging"
	"github.com/colonyops/wiz/internal/data/assets"
	"github.com/colonyops/wiz/internal/data/db"
	"github.com/colonyops/wiz/pkg/randid"
)

// ErrRecordNotFound is returned by GetRecord for unknown ids and codes.
var ErrRecordNotFound = errors.New("record not found")

// codeAttempts bounds retries when a generated code collides.
const codeAttempts = 5

// GatewayStore implements gateway.Gateway on the local SQLite database.
// Uploaded bytes go to an assets.Store.
type GatewayStore struct {
	db     *db.DB
	assets *assets.Store

	mu      sync.Mutex
	entropy io.Reader

	// Now is the clock used for created_at and ULID timestamps.
	Now func() time.Time
}

var _ gateway.Gateway = (*GatewayStore)(nil)

// NewGatewayStore creates a SQLite-backed gateway.
func NewGatewayStore(database *db.DB, a *assets.Store) *GatewayStore {
	return &GatewayStore{
		db:      database,
		assets:  a,
		entropy: ulid.Monotonic(rand.Reader, 0),
		Now:     time.Now,
	}
}

func (s *GatewayStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.Now()), s.entropy).String()
}

func newCode(prefix string) string {
	return prefix + "-" + strings.ToUpper(randid.Generate(6))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gateway.ErrValidation, fmt.Sprintf(format, args...))
}

// insert stores payload under a fresh id and, when prefix is set, a unique code.
func (s *GatewayStore) insert(ctx context.Context, kind gateway.Kind, prefix, status, title string, payload any) (db.Record, error) {
	start := time.Now()
	raw, err := json.Marshal(payload)
	if err != nil {
		return db.Record{}, fmt.Errorf("marshal %s: %w", kind, err)
	}

	row := db.Record{
		ID:        s.newID(),
		Kind:      string(kind),
		Status:    status,
		Title:     title,
		Payload:   string(raw),
		CreatedAt: s.Now().UnixNano(),
	}

	for attempt := 1; ; attempt++ {
		if prefix != "" {
			row.Code = sql.NullString{String: newCode(prefix), Valid: true}
		}
		err = s.db.Queries().InsertRecord(ctx, row)
		if err == nil {
			break
		}
		if prefix == "" || !IsUniqueError(err) || attempt == codeAttempts {
			return db.Record{}, fmt.Errorf("insert %s: %w", kind, err)
		}
		clog := logging.Component("gateway")
		clog.Debug().Ctx(ctx).Str("code", row.Code.String).Msg("code collision, retrying")
	}

	log := logging.Component("gateway")
	log.Info().Ctx(ctx).
		Str("kind", row.Kind).
		Str("id", row.ID).
		Str("code", row.Code.String).
		Dur("duration", time.Since(start)).
		Msg("record created")
	return row, nil
}

func createdAt(row db.Record) time.Time { return time.Unix(0, row.CreatedAt) }

func (s *GatewayStore) CreateQuote(ctx context.Context, p gateway.QuotePayload) (gateway.QuoteRecord, error) {
	const op = "create quote"
	if strings.TrimSpace(p.OrganizationName) == "" {
		return gateway.QuoteRecord{}, gateway.Wrap(op, invalid("organization is required"))
	}
	if len(p.Items) == 0 {
		return gateway.QuoteRecord{}, gateway.Wrap(op, invalid("at least one line item is required"))
	}

	row, err := s.insert(ctx, gateway.KindQuote, "Q", gateway.StatusPending, p.OrganizationName, p)
	if err != nil {
		return gateway.QuoteRecord{}, gateway.Wrap(op, err)
	}
	return gateway.QuoteRecord{ID: row.ID, QuoteCode: row.Code.String, CreatedAt: createdAt(row), QuotePayload: p}, nil
}

func (s *GatewayStore) CreateDesignJob(ctx context.Context, p gateway.DesignJobPayload) (gateway.DesignJobRecord, error) {
	const op = "create design job"
	if strings.TrimSpace(p.Brief) == "" {
		return gateway.DesignJobRecord{}, gateway.Wrap(op, invalid("brief is required"))
	}

	row, err := s.insert(ctx, gateway.KindDesignJob, "DJ", gateway.StatusPending, p.OrganizationName, p)
	if err != nil {
		return gateway.DesignJobRecord{}, gateway.Wrap(op, err)
	}
	return gateway.DesignJobRecord{
		ID: row.ID, JobCode: row.Code.String, Status: row.Status,
		CreatedAt: createdAt(row), DesignJobPayload: p,
	}, nil
}

func (s *GatewayStore) CreateOrganization(ctx context.Context, p gateway.OrganizationPayload) (gateway.OrganizationRecord, error) {
	const op = "create organization"
	if strings.TrimSpace(p.Name) == "" {
		return gateway.OrganizationRecord{}, gateway.Wrap(op, invalid("name is required"))
	}

	row, err := s.insert(ctx, gateway.KindOrganization, "", gateway.StatusActive, p.Name, p)
	if err != nil {
		return gateway.OrganizationRecord{}, gateway.Wrap(op, err)
	}
	return gateway.OrganizationRecord{ID: row.ID, CreatedAt: createdAt(row), OrganizationPayload: p}, nil
}

func (s *GatewayStore) CreateContact(ctx context.Context, p gateway.ContactPayload) (gateway.ContactRecord, error) {
	const op = "create contact"
	if strings.TrimSpace(p.Name) == "" {
		return gateway.ContactRecord{}, gateway.Wrap(op, invalid("name is required"))
	}
	if _, err := s.get(ctx, gateway.KindOrganization, p.OrganizationID); err != nil {
		return gateway.ContactRecord{}, gateway.Wrap(op, err)
	}

	row, err := s.insert(ctx, gateway.KindContact, "", gateway.StatusActive, p.Name, p)
	if err != nil {
		return gateway.ContactRecord{}, gateway.Wrap(op, err)
	}
	return gateway.ContactRecord{ID: row.ID, CreatedAt: createdAt(row), ContactPayload: p}, nil
}

func (s *GatewayStore) CreateFulfillmentOrder(ctx context.Context, p gateway.FulfillmentPayload) (gateway.FulfillmentRecord, error) {
	const op = "create fulfillment order"
	if len(p.Mappings) == 0 {
		return gateway.FulfillmentRecord{}, gateway.Wrap(op, invalid("no products mapped"))
	}
	for _, m := range p.Mappings {
		if m.ProductID == "" {
			return gateway.FulfillmentRecord{}, gateway.Wrap(op, invalid("line %q has no product", m.LineName))
		}
	}
	if _, err := s.get(ctx, gateway.KindQuote, p.QuoteID); err != nil {
		return gateway.FulfillmentRecord{}, gateway.Wrap(op, err)
	}

	row, err := s.insert(ctx, gateway.KindFulfillment, "FO", gateway.StatusSubmitted, p.QuoteCode, p)
	if err != nil {
		return gateway.FulfillmentRecord{}, gateway.Wrap(op, err)
	}
	return gateway.FulfillmentRecord{
		ID: row.ID, ExternalOrderID: row.Code.String, Status: row.Status,
		CreatedAt: createdAt(row), FulfillmentPayload: p,
	}, nil
}

func (s *GatewayStore) CreateMerchBundle(ctx context.Context, p gateway.MerchBundlePayload) (gateway.MerchBundleRecord, error) {
	const op = "create merch bundle"
	total := 0
	for _, prod := range p.Products {
		if prod.Quantity <= 0 {
			return gateway.MerchBundleRecord{}, gateway.Wrap(op, invalid("%s quantity must be positive", prod.Type))
		}
		total += prod.Quantity
	}
	if total == 0 {
		return gateway.MerchBundleRecord{}, gateway.Wrap(op, invalid("at least one product is required"))
	}

	row, err := s.insert(ctx, gateway.KindMerchBundle, "MB", gateway.StatusPending, p.OrganizationName, p)
	if err != nil {
		return gateway.MerchBundleRecord{}, gateway.Wrap(op, err)
	}
	return gateway.MerchBundleRecord{
		ID: row.ID, BundleCode: row.Code.String, Status: row.Status,
		TotalAllocated: total, CreatedAt: createdAt(row), MerchBundlePayload: p,
	}, nil
}

func (s *GatewayStore) CreateColorSpec(ctx context.Context, p gateway.ColorSpecPayload) (gateway.ColorSpecRecord, error) {
	const op = "create color spec"
	if len(p.Colors) == 0 {
		return gateway.ColorSpecRecord{}, gateway.Wrap(op, invalid("no colors selected"))
	}

	row, err := s.insert(ctx, gateway.KindColorSpec, "CS", gateway.StatusActive, p.Name, p)
	if err != nil {
		return gateway.ColorSpecRecord{}, gateway.Wrap(op, err)
	}
	return gateway.ColorSpecRecord{ID: row.ID, SpecCode: row.Code.String, CreatedAt: createdAt(row), ColorSpecPayload: p}, nil
}

func (s *GatewayStore) UploadAsset(ctx context.Context, meta gateway.AssetMeta) (gateway.UploadTicket, error) {
	const op = "upload asset"
	ticket, err := s.assets.Ticket(meta)
	if err != nil {
		return gateway.UploadTicket{}, gateway.Wrap(op, err)
	}

	meta.Filename = ticket.SanitizedFilename
	if _, err := s.insert(ctx, gateway.KindAsset, "", gateway.StatusPending, ticket.UploadURL, meta); err != nil {
		return gateway.UploadTicket{}, gateway.Wrap(op, err)
	}
	return ticket, nil
}

func (s *GatewayStore) PutAsset(ctx context.Context, uploadURL string, r io.Reader) error {
	return gateway.Wrap("upload asset", s.assets.Put(ctx, uploadURL, r))
}

func (s *GatewayStore) ListOrganizations(ctx context.Context) ([]gateway.OrganizationRecord, error) {
	return listDecoded(ctx, s, gateway.KindOrganization, func(row db.Record, p gateway.OrganizationPayload) gateway.OrganizationRecord {
		return gateway.OrganizationRecord{ID: row.ID, CreatedAt: createdAt(row), OrganizationPayload: p}
	})
}

func (s *GatewayStore) ListQuotes(ctx context.Context) ([]gateway.QuoteRecord, error) {
	return listDecoded(ctx, s, gateway.KindQuote, func(row db.Record, p gateway.QuotePayload) gateway.QuoteRecord {
		return gateway.QuoteRecord{ID: row.ID, QuoteCode: row.Code.String, CreatedAt: createdAt(row), QuotePayload: p}
	})
}

// ListRecords returns records of kind, or of every kind when kind is empty.
func (s *GatewayStore) ListRecords(ctx context.Context, kind gateway.Kind) ([]gateway.Record, error) {
	var (
		rows []db.Record
		err  error
	)
	if kind == "" {
		rows, err = s.db.Queries().ListRecords(ctx)
	} else {
		rows, err = s.db.Queries().ListRecordsByKind(ctx, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]gateway.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToRecord(row))
	}
	return out, nil
}

// get loads a record and checks its kind.
func (s *GatewayStore) get(ctx context.Context, kind gateway.Kind, id string) (db.Record, error) {
	if id == "" {
		return db.Record{}, invalid("%s id is required", kind)
	}
	row, err := s.db.Queries().GetRecord(ctx, id)
	if IsNotFoundError(err) || (err == nil && row.Kind != string(kind)) {
		return db.Record{}, fmt.Errorf("%s %s: %w", kind, id, gateway.ErrNotFound)
	}
	if err != nil {
		return db.Record{}, fmt.Errorf("get %s: %w", kind, err)
	}
	return row, nil
}

func listDecoded[P, R any](ctx context.Context, s *GatewayStore, kind gateway.Kind, build func(db.Record, P) R) ([]R, error) {
	rows, err := s.db.Queries().ListRecordsByKind(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	out := make([]R, 0, len(rows))
	for _, row := range rows {
		var p P
		if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", kind, row.ID, err)
		}
		out = append(out, build(row, p))
	}
	return out, nil
}

func rowToRecord(row db.Record) gateway.Record {
	return gateway.Record{
		ID:        row.ID,
		Kind:      gateway.Kind(row.Kind),
		Code:      row.Code.String,
		Status:    row.Status,
		Title:     row.Title,
		CreatedAt: createdAt(row),
		Payload:   json.RawMessage(row.Payload),
	}
}

// GetRecord looks a record up by id or by human code.
func (s *GatewayStore) GetRecord(ctx context.Context, ref string) (gateway.Record, error) {
	q := s.db.Queries()
	row, err := q.GetRecord(ctx, ref)
	if IsNotFoundError(err) {
		row, err = q.GetRecordByCode(ctx, strings.ToUpper(ref))
	}
	if IsNotFoundError(err) {
		return gateway.Record{}, fmt.Errorf("%s: %w", ref, ErrRecordNotFound)
	}
	if err != nil {
		return gateway.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rowToRecord(row), nil
}
