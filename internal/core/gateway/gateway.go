// Package gateway defines the persistence contract that wizard actions submit
// their results through. Implementations live under internal/data.
package gateway

import (
	"context"
	"io"
)

// QuoteCreator persists finished quotes.
type QuoteCreator interface {
	CreateQuote(ctx context.Context, p QuotePayload) (QuoteRecord, error)
}

// DesignJobCreator persists design briefs as jobs for a designer.
type DesignJobCreator interface {
	CreateDesignJob(ctx context.Context, p DesignJobPayload) (DesignJobRecord, error)
}

// OrganizationCreator persists organizations and their contacts.
type OrganizationCreator interface {
	CreateOrganization(ctx context.Context, p OrganizationPayload) (OrganizationRecord, error)
	CreateContact(ctx context.Context, p ContactPayload) (ContactRecord, error)
}

// FulfillmentCreator pushes orders to the fulfillment partner.
type FulfillmentCreator interface {
	CreateFulfillmentOrder(ctx context.Context, p FulfillmentPayload) (FulfillmentRecord, error)
}

// MerchBundleCreator persists merchandise bundles.
type MerchBundleCreator interface {
	CreateMerchBundle(ctx context.Context, p MerchBundlePayload) (MerchBundleRecord, error)
}

// ColorSpecCreator persists matched colour specifications.
type ColorSpecCreator interface {
	CreateColorSpec(ctx context.Context, p ColorSpecPayload) (ColorSpecRecord, error)
}

// AssetUploader is the two-phase upload: UploadAsset reserves a target and
// PutAsset writes the raw bytes to it.
type AssetUploader interface {
	UploadAsset(ctx context.Context, meta AssetMeta) (UploadTicket, error)
	PutAsset(ctx context.Context, uploadURL string, r io.Reader) error
}

// Directory is the read side used to populate pick steps.
type Directory interface {
	ListOrganizations(ctx context.Context) ([]OrganizationRecord, error)
	ListQuotes(ctx context.Context) ([]QuoteRecord, error)
	ListRecords(ctx context.Context, kind Kind) ([]Record, error)
}

// Gateway is the full contract.
type Gateway interface {
	QuoteCreator
	DesignJobCreator
	OrganizationCreator
	FulfillmentCreator
	MerchBundleCreator
	ColorSpecCreator
	AssetUploader
	Directory
}
