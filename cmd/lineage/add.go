package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

// recordFlags holds the fields that can be given when adding a record.
type recordFlags struct {
	given    string
	surname  string
	gender   string
	name     string
	person   int64
	family   int64
	husband  int64
	wife     int64
	relation string
}

func newAddCmd() *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "add KIND",
		Short: "Add a person, family, child, name or todo record",
		Long: `Add a record and print its ID. Facts of the record are then set with
'lineage fact set'.

  person  --given --surname [--gender]
  family  --husband --wife
  child   --person --family [--relation]
  name    --person --given --surname
  todo    --person --name`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.given, "given", "", "Given name")
	cmd.Flags().StringVar(&flags.surname, "surname", "", "Surname")
	cmd.Flags().StringVar(&flags.gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&flags.name, "name", "", "Todo name")
	cmd.Flags().Int64Var(&flags.person, "person", 0, "Person ID")
	cmd.Flags().Int64Var(&flags.family, "family", 0, "Family ID")
	cmd.Flags().Int64Var(&flags.husband, "husband", 0, "Husband person ID")
	cmd.Flags().Int64Var(&flags.wife, "wife", 0, "Wife person ID")
	cmd.Flags().StringVar(&flags.relation, "relation", "", "Relation to both parents, e.g. adopted")

	return cmd
}

// buildRecord returns a new record of kind from flags.
func buildRecord(kind entities.OwnerKind, f recordFlags) (entities.Record, error) {
	switch kind {
	case entities.OwnerPerson:
		if f.given == "" && f.surname == "" {
			return nil, fmt.Errorf("a person needs --given or --surname")
		}
		return &entities.Person{GivenName: f.given, Surname: f.surname, Gender: f.gender}, nil
	case entities.OwnerFamily:
		if f.husband == 0 && f.wife == 0 {
			return nil, fmt.Errorf("a family needs --husband or --wife")
		}
		return &entities.Family{HusbandID: f.husband, WifeID: f.wife}, nil
	case entities.OwnerChild:
		if f.person == 0 || f.family == 0 {
			return nil, fmt.Errorf("a child needs --person and --family")
		}
		return &entities.Child{PersonID: f.person, FamilyID: f.family, FatherRelation: f.relation, MotherRelation: f.relation}, nil
	case entities.OwnerName:
		if f.person == 0 {
			return nil, fmt.Errorf("a name needs --person")
		}
		return &entities.Name{PersonID: f.person, GivenName: f.given, Surname: f.surname}, nil
	case entities.OwnerToDo:
		if f.person == 0 || f.name == "" {
			return nil, fmt.Errorf("a todo needs --person and --name")
		}
		return &entities.ToDo{PersonID: f.person, Name: f.name}, nil
	}
	return nil, fmt.Errorf("invalid record kind %q", kind)
}

func runAdd(cmd *cobra.Command, kindArg string, flags recordFlags) error {
	ctx := cmd.Context()

	kind, err := parseOwnerKind(kindArg)
	if err != nil {
		return err
	}
	rec, err := buildRecord(kind, flags)
	if err != nil {
		return err
	}

	return withInternalDeps(func(d *internalDeps) error {
		ok, err := d.relationalDB.CanEdit(ctx, d.User, rec)
		if err != nil {
			return fmt.Errorf("checking edit rights: %w", err)
		}
		if !ok {
			return fmt.Errorf("adding %s: %w", kind, entities.ErrOwnershipViolation)
		}

		if err := d.relationalDB.Save(ctx, rec); err != nil {
			return fmt.Errorf("saving %s: %w", kind, err)
		}

		target := fmt.Sprintf("%s:%d", kind, rec.RecordID())
		if err := d.relationalDB.LogAction(ctx, entities.AuditRecordSaved, target, map[string]any{"user": d.User.UserName}); err != nil {
			d.logger.Warn("audit log failed", zap.String("target", target), zap.Error(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %d\n", kind, rec.RecordID())
		return nil
	})
}
