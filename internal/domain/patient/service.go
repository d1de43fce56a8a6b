package patient

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var ssnLast4Pattern = regexp.MustCompile(`^\d{4}$`)

type Service struct {
	patients Repository
}

func NewService(repo Repository) *Service {
	return &Service{patients: repo}
}

func validate(p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.SSNLast4 != nil && *p.SSNLast4 != "" && !ssnLast4Pattern.MatchString(*p.SSNLast4) {
		return fmt.Errorf("ssn_last4 must be exactly four digits")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	p.Active = true
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

// Deactivate soft-deletes the patient. Billing history stays intact, so
// invoices and reports keep resolving the name.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.patients.Deactivate(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}
