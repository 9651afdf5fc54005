package gateway

import (
	"encoding/json"
	"time"

	"github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/quote"
)

// Kind identifies a record family.
type Kind string

const (
	KindQuote        Kind = "quote"
	KindDesignJob    Kind = "design_job"
	KindOrganization Kind = "organization"
	KindContact      Kind = "contact"
	KindFulfillment  Kind = "fulfillment_order"
	KindMerchBundle  Kind = "merch_bundle"
	KindColorSpec    Kind = "color_spec"
	KindAsset        Kind = "asset"
)

// Kinds lists every record kind in display order.
var Kinds = []Kind{
	KindOrganization, KindContact, KindQuote, KindDesignJob,
	KindFulfillment, KindMerchBundle, KindColorSpec, KindAsset,
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Status values returned by the gateway for created entities.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusActive    = "active"
)

// Record is the generic stored form of any created entity.
type Record struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Code      string          `json:"code,omitempty"`
	Status    string          `json:"status,omitempty"`
	Title     string          `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

type QuotePayload struct {
	OrganizationID   string           `json:"organization_id,omitempty"`
	OrganizationName string           `json:"organization_name"`
	Items            []quote.LineItem `json:"items"`
	Summary          quote.Summary    `json:"summary"`
	ValidUntil       time.Time        `json:"valid_until"`
}

type QuoteRecord struct {
	ID        string    `json:"id"`
	QuoteCode string    `json:"quote_code"`
	CreatedAt time.Time `json:"created_at"`
	QuotePayload
}

type DesignJobPayload struct {
	OrganizationID   string            `json:"organization_id,omitempty"`
	OrganizationName string            `json:"organization_name"`
	Brief            string            `json:"brief"`
	Requirements     map[string]string `json:"requirements,omitempty"`
	DesignerID       string            `json:"designer_id,omitempty"`
}

type DesignJobRecord struct {
	ID        string    `json:"id"`
	JobCode   string    `json:"job_code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	DesignJobPayload
}

type OrganizationPayload struct {
	Name           string `json:"name"`
	Type           string `json:"type,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Country        string `json:"country,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	LogoRef        string `json:"logo_ref,omitempty"`
}

type OrganizationRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	OrganizationPayload
}

type ContactPayload struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

type ContactRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ContactPayload
}

// ProductMapping ties a quote line to a fulfillment partner product.
type ProductMapping struct {
	LineItemID string `json:"line_item_id"`
	LineName   string `json:"line_name"`
	Quantity   int    `json:"quantity"`
	ProductID  string `json:"product_id"`
}

type FulfillmentPayload struct {
	QuoteID        string           `json:"quote_id"`
	QuoteCode      string           `json:"quote_code,omitempty"`
	Mappings       []ProductMapping `json:"mappings"`
	ShippingMethod string           `json:"shipping_method"`
	GiftMessage    string           `json:"gift_message,omitempty"`
}

type FulfillmentRecord struct {
	ID              string    `json:"id"`
	ExternalOrderID string    `json:"external_order_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	FulfillmentPayload
}

// BundleProduct is one enabled product type in a merch bundle.
type BundleProduct struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type MerchBundlePayload struct {
	OrganizationID   string          `json:"organization_id,omitempty"`
	OrganizationName string          `json:"organization_name"`
	Products         []BundleProduct `json:"products"`
	DesignStyle      string          `json:"design_style,omitempty"`
	TeamStore        bool            `json:"team_store"`
}

type MerchBundleRecord struct {
	ID             string    `json:"id"`
	BundleCode     string    `json:"bundle_code"`
	Status         string    `json:"status"`
	TotalAllocated int       `json:"total_allocated"`
	CreatedAt      time.Time `json:"created_at"`
	MerchBundlePayload
}

type ColorSpecPayload struct {
	Name      string                     `json:"name,omitempty"`
	ImagePath string                     `json:"image_path,omitempty"`
	Colors    []colormatch.SelectedColor `json:"colors"`
}

type ColorSpecRecord struct {
	ID        string    `json:"id"`
	SpecCode  string    `json:"spec_code"`
	CreatedAt time.Time `json:"created_at"`
	ColorSpecPayload
}

// AssetMeta describes a file about to be uploaded.
type AssetMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadTicket is the target returned by UploadAsset.
type UploadTicket struct {
	UploadURL         string `json:"upload_url"`
	UploadID          string `json:"upload_id"`
	SanitizedFilename string `json:"sanitized_filename"`
}
