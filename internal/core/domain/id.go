package domain

import (
	"strings"

	"github.com/google/uuid"
)

const DefaultShopCode = "ATIL"

const (
	PartIDPrefix   = "I-"
	VendorIDPrefix = "V-"
	SaleIDPrefix   = "S-"
	AuditIDPrefix  = "A-"
)

// IDGenerator builds short, type-tagged identifiers such as I-ATIL1A2B3C4D.
type IDGenerator struct {
	ShopCode string
}

func NewIDGenerator(shopCode string) IDGenerator {
	if shopCode == "" {
		shopCode = DefaultShopCode
	}
	return IDGenerator{ShopCode: strings.ToUpper(shopCode)}
}

func (g IDGenerator) Part() string   { return g.build(PartIDPrefix, 8) }
func (g IDGenerator) Vendor() string { return g.build(VendorIDPrefix, 8) }
func (g IDGenerator) Sale() string   { return g.build(SaleIDPrefix, 8) }
func (g IDGenerator) Audit() string  { return g.build(AuditIDPrefix, 12) }

func (g IDGenerator) build(prefix string, n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + g.ShopCode + strings.ToUpper(raw[:n])
}
