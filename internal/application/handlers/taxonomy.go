package handlers

import "github.com/ersonp/lineage-core/internal/domain/entities"

// TaxonomyHandler lists the fact types and event subtypes.
type TaxonomyHandler struct{}

// NewTaxonomyHandler creates a new TaxonomyHandler.
func NewTaxonomyHandler() *TaxonomyHandler {
	return &TaxonomyHandler{}
}

// FactTypeView describes one fact type.
type FactTypeView struct {
	Code      entities.FactTypeCode `json:"code"`
	Name      string                `json:"name"`
	Owner     entities.OwnerKind    `json:"owner"`
	IDField   entities.IDField      `json:"id_field"`
	Storage   entities.StorageMode  `json:"storage"`
	Subtype   entities.EventSubtype `json:"subtype,omitempty"`
	PlaceKind entities.PlaceKind    `json:"place_kind,omitempty"`
	Fields    entities.FixedFields  `json:"fields"`
}

// SubtypeView describes one event subtype.
type SubtypeView struct {
	Code  entities.EventSubtype `json:"code"`
	Label string                `json:"label"`
}

// HandleList returns every fact type in code order.
func (h *TaxonomyHandler) HandleList() []FactTypeView {
	codes := entities.FactTypeCodes()
	views := make([]FactTypeView, 0, len(codes))
	for _, code := range codes {
		info, err := entities.LookupFactType(code)
		if err != nil {
			continue
		}
		views = append(views, FactTypeView{
			Code:      info.Code,
			Name:      info.Name,
			Owner:     info.Owner,
			IDField:   info.RequiredIDField(),
			Storage:   info.Storage,
			Subtype:   info.Subtype,
			PlaceKind: info.PlaceKind,
			Fields:    info.Fields,
		})
	}
	return views
}

// HandleSubtypes returns every known event subtype in code order.
func (h *TaxonomyHandler) HandleSubtypes() []SubtypeView {
	subs := entities.EventSubtypes()
	views := make([]SubtypeView, 0, len(subs))
	for _, s := range subs {
		views = append(views, SubtypeView{Code: s, Label: s.Label()})
	}
	return views
}
