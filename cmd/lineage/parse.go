package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// parseFactType accepts a fact type code or its name, ignoring case.
func parseFactType(s string) (entities.FactTypeCode, error) {
	code, err := entities.ParseFactType(s)
	if err != nil {
		return 0, fmt.Errorf("%w (see 'lineage types')", err)
	}
	return code, nil
}

func parseOwnerKind(s string) (entities.OwnerKind, error) {
	kind, ok := entities.ParseOwnerKind(strings.ToLower(s))
	if !ok {
		return "", fmt.Errorf("invalid record kind %q, valid kinds: %v", s, entities.OwnerKinds)
	}
	return kind, nil
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// parseSubtype accepts an event subtype code or label. An empty string
// is no subtype.
func parseSubtype(s string) (entities.EventSubtype, error) {
	if s == "" {
		return 0, nil
	}
	sub, ok := entities.ParseEventSubtype(s)
	if !ok {
		return 0, fmt.Errorf("unknown event subtype %q (see 'lineage types --subtypes')", s)
	}
	return sub, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
