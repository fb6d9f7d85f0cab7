package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

type mockRepo struct {
	invoices     map[uuid.UUID]*Invoice
	payments     map[uuid.UUID][]*Payment
	patientOwner map[uuid.UUID]uuid.UUID
	doctorOwner  map[uuid.UUID]uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		invoices:     make(map[uuid.UUID]*Invoice),
		payments:     make(map[uuid.UUID][]*Payment),
		patientOwner: make(map[uuid.UUID]uuid.UUID),
		doctorOwner:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockRepo) visible(ident auth.Identity, inv *Invoice) bool {
	switch ident.Role {
	case auth.RoleAdmin:
		return true
	case auth.RolePatient:
		return m.patientOwner[inv.PatientID] == ident.ID
	case auth.RoleDoctor:
		return inv.DoctorID != nil && m.doctorOwner[*inv.DoctorID] == ident.ID
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockRepo) GetScoped(_ context.Context, ident auth.Identity, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || !m.visible(ident, inv) {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *mockRepo) ListScoped(_ context.Context, ident auth.Identity, status string, limit, offset int) ([]*Invoice, int, error) {
	var items []*Invoice
	for _, inv := range m.invoices {
		if !m.visible(ident, inv) {
			continue
		}
		if status != "" && inv.Status != status {
			continue
		}
		cp := *inv
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockRepo) RecordPayment(_ context.Context, inv *Invoice, pay *Payment) error {
	stored, ok := m.invoices[inv.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status == InvoicePaid {
		return ErrAlreadyPaid
	}
	pay.ID = uuid.New()
	pay.InvoiceID = inv.ID
	m.payments[inv.ID] = append(m.payments[inv.ID], pay)
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *mockRepo) ListPayments(_ context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return m.payments[invoiceID], nil
}

type mockDoctorDir struct {
	byUser map[uuid.UUID]uuid.UUID
}

func (m *mockDoctorDir) DoctorIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := m.byUser[userID]
	if !ok {
		return uuid.Nil, errors.New("doctor not found")
	}
	return id, nil
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	patientID uuid.UUID
	patient   auth.Identity
	doctor    auth.Identity
	admin     auth.Identity
}

func newFixture() *fixture {
	repo := newMockRepo()

	patientUser := uuid.New()
	doctorUser := uuid.New()
	patientID := uuid.New()
	doctorID := uuid.New()
	repo.patientOwner[patientID] = patientUser
	repo.doctorOwner[doctorID] = doctorUser

	dir := &mockDoctorDir{byUser: map[uuid.UUID]uuid.UUID{doctorUser: doctorID}}

	return &fixture{
		svc:       NewService(repo, dir),
		repo:      repo,
		patientID: patientID,
		patient:   auth.Identity{ID: patientUser, Role: auth.RolePatient},
		doctor:    auth.Identity{ID: doctorUser, Role: auth.RoleDoctor},
		admin:     auth.Identity{ID: uuid.New(), Role: auth.RoleAdmin},
	}
}

func TestCreateInvoice_DoctorAttributed(t *testing.T) {
	f := newFixture()

	inv, err := f.svc.CreateInvoice(context.Background(), f.doctor, CreateInvoiceInput{
		PatientID: f.patientID, Amount: 500,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}
	if inv.Status != InvoicePending {
		t.Errorf("status = %q, want pending", inv.Status)
	}
	if inv.DoctorID == nil {
		t.Error("expected doctor attribution on doctor-raised invoice")
	}

	adminInv, err := f.svc.CreateInvoice(context.Background(), f.admin, CreateInvoiceInput{
		PatientID: f.patientID, Amount: 250,
	})
	if err != nil {
		t.Fatalf("admin CreateInvoice() error: %v", err)
	}
	if adminInv.DoctorID != nil {
		t.Error("admin-raised invoice should carry no doctor")
	}
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.CreateInvoice(context.Background(), f.admin, CreateInvoiceInput{Amount: 100}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if _, err := f.svc.CreateInvoice(context.Background(), f.admin, CreateInvoiceInput{PatientID: f.patientID, Amount: -5}); err == nil {
		t.Error("expected error for non-positive amount")
	}
	if _, err := f.svc.CreateInvoice(context.Background(), f.patient, CreateInvoiceInput{PatientID: f.patientID, Amount: 100}); !errors.Is(err, ErrForbidden) {
		t.Error("expected ErrForbidden for patient-raised invoice")
	}
}

func TestPay_OwnerSettles(t *testing.T) {
	f := newFixture()

	inv, err := f.svc.CreateInvoice(context.Background(), f.admin, CreateInvoiceInput{
		PatientID: f.patientID, Amount: 500,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}

	pay, err := f.svc.Pay(context.Background(), f.patient, inv.ID, PayInput{Method: "upi"})
	if err != nil {
		t.Fatalf("Pay() error: %v", err)
	}
	if pay.Amount != 500 {
		t.Errorf("payment amount = %v, want invoice amount 500", pay.Amount)
	}
	got, err := f.svc.Get(context.Background(), f.patient, inv.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != InvoicePaid || got.PaidAt == nil {
		t.Error("invoice not marked paid")
	}
}

func TestPay_ForeignPatientDenied(t *testing.T) {
	f := newFixture()

	inv, _ := f.svc.CreateInvoice(context.Background(), f.admin, CreateInvoiceInput{
		PatientID: f.patientID, Amount: 500,
	})

	stranger := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}
	if _, err := f.svc.Pay(context.Background(), stranger, inv.ID, PayInput{Method: "upi"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign patient, got %v", err)
	}
}

func TestPay_DoublePaymentRejected(t *testing.T) {
	f := newFixture()

	inv, _ := f.svc.CreateInvoice(context.Background(), f.admin, CreateInvoiceInput{
		PatientID: f.patientID, Amount: 500,
	})

	if _, err := f.svc.Pay(context.Background(), f.patient, inv.ID, PayInput{Method: "upi"}); err != nil {
		t.Fatalf("first Pay() error: %v", err)
	}
	if _, err := f.svc.Pay(context.Background(), f.patient, inv.ID, PayInput{Method: "upi"}); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestList_Scoped(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.CreateInvoice(context.Background(), f.doctor, CreateInvoiceInput{
		PatientID: f.patientID, Amount: 500,
	}); err != nil {
		t.Fatalf("CreateInvoice() error: %v", err)
	}

	if _, total, _ := f.svc.List(context.Background(), f.patient, "", 20, 0); total != 1 {
		t.Errorf("owing patient sees %d invoices, want 1", total)
	}
	if _, total, _ := f.svc.List(context.Background(), f.doctor, "", 20, 0); total != 1 {
		t.Errorf("raising doctor sees %d invoices, want 1", total)
	}
	stranger := auth.Identity{ID: uuid.New(), Role: auth.RolePatient}
	if _, total, _ := f.svc.List(context.Background(), stranger, "", 20, 0); total != 0 {
		t.Errorf("stranger sees %d invoices, want 0", total)
	}
}
