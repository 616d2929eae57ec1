package services

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// describeOwner returns the "for whom" label of rec and, when rec links
// to a person or family that does not exist, a link error wrapping
// ErrInvalidChildOrMarriageLink. A store failure is returned as err.
func (s *ResolverService) describeOwner(ctx context.Context, rec entities.Record) (forWhom string, linkErr, err error) {
	switch r := rec.(type) {
	case *entities.Person:
		return r.DisplayName(), nil, nil

	case *entities.Family:
		var names []string
		for _, id := range []int64{r.HusbandID, r.WifeID} {
			if id == 0 {
				continue
			}
			p, err := s.loadPerson(ctx, id)
			if err != nil {
				return "", nil, err
			}
			if p == nil {
				return "", dangling("family %d spouse %d", r.ID, id), nil
			}
			names = append(names, p.DisplayName())
		}
		return joinNames(names), nil, nil

	case *entities.Child:
		p, err := s.loadPerson(ctx, r.PersonID)
		if err != nil {
			return "", nil, err
		}
		if p == nil {
			return "", dangling("child %d person %d", r.ID, r.PersonID), nil
		}
		fam, err := s.store.Load(ctx, entities.OwnerFamily, r.FamilyID)
		if err != nil {
			return "", nil, fmt.Errorf("loading family %d: %w", r.FamilyID, err)
		}
		if fam == nil {
			return p.DisplayName(), dangling("child %d family %d", r.ID, r.FamilyID), nil
		}
		return p.DisplayName(), nil, nil

	case *entities.Name:
		p, err := s.loadPerson(ctx, r.PersonID)
		if err != nil {
			return "", nil, err
		}
		if p == nil {
			return "", dangling("name %d person %d", r.ID, r.PersonID), nil
		}
		return p.DisplayName(), nil, nil

	case *entities.ToDo:
		if r.PersonID == 0 {
			return "", nil, nil
		}
		p, err := s.loadPerson(ctx, r.PersonID)
		if err != nil {
			return "", nil, err
		}
		if p == nil {
			return "", dangling("to-do %d person %d", r.ID, r.PersonID), nil
		}
		return p.DisplayName(), nil, nil
	}
	return "", nil, nil
}

func (s *ResolverService) loadPerson(ctx context.Context, id int64) (*entities.Person, error) {
	if id == 0 {
		return nil, nil
	}
	rec, err := s.store.Load(ctx, entities.OwnerPerson, id)
	if err != nil {
		return nil, fmt.Errorf("loading person %d: %w", id, err)
	}
	p, _ := rec.(*entities.Person)
	return p, nil
}

func dangling(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, entities.ErrInvalidChildOrMarriageLink)...)
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return names[0] + " and " + names[1]
	}
}
