package usecase

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/domain/schedule"
	"medlink-tracker/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// The usecases run their writes through gorm transactions, so the tests
// hand gorm a connection pool that can begin and commit but never reaches
// a database. All data access goes through the in-memory repositories.

var errNoDatabase = errors.New("no database behind this pool")

type noDBPool struct{}

func (noDBPool) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, errNoDatabase
}

func (noDBPool) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoDatabase
}

func (noDBPool) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errNoDatabase
}

func (noDBPool) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (noDBPool) BeginTx(ctx context.Context, opts *sql.TxOptions) (gorm.ConnPool, error) {
	return &noDBTx{}, nil
}

type noDBTx struct{ noDBPool }

func (*noDBTx) Commit() error   { return nil }
func (*noDBTx) Rollback() error { return nil }

func testGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{
		ConnPool: noDBPool{},
		Logger:   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type memIntakeRepo struct {
	logs      map[uuid.UUID]*entity.IntakeLog
	createErr error
}

func newMemIntakeRepo(logs ...*entity.IntakeLog) *memIntakeRepo {
	m := &memIntakeRepo{logs: map[uuid.UUID]*entity.IntakeLog{}}
	for _, l := range logs {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		m.logs[l.ID] = l
	}
	return m
}

func (m *memIntakeRepo) Create(db *gorm.DB, log *entity.IntakeLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	stored := *log
	m.logs[log.ID] = &stored
	return nil
}

func (m *memIntakeRepo) CreateBatch(db *gorm.DB, logs []entity.IntakeLog) error {
	for i := range logs {
		if err := m.Create(db, &logs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memIntakeRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.IntakeLog, error) {
	l, ok := m.logs[id]
	if !ok {
		return nil, nil
	}
	found := *l
	return &found, nil
}

func (m *memIntakeRepo) FindByPatientAndDate(db *gorm.DB, patientID uuid.UUID, date time.Time) ([]entity.IntakeLog, error) {
	var out []entity.IntakeLog
	for _, l := range m.logs {
		if l.PatientID == patientID && l.ScheduledDate.Equal(date) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memIntakeRepo) FindByPatientAndDateRange(db *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]entity.IntakeLog, error) {
	var out []entity.IntakeLog
	for _, l := range m.logs {
		if l.PatientID == patientID && !l.ScheduledDate.Before(from) && !l.ScheduledDate.After(to) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memIntakeRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.IntakeLog, error) {
	var out []entity.IntakeLog
	for _, l := range m.logs {
		if l.PatientID == patientID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memIntakeRepo) FindByPrescriptionID(db *gorm.DB, prescriptionID uuid.UUID) ([]entity.IntakeLog, error) {
	var out []entity.IntakeLog
	for _, l := range m.logs {
		if l.PrescriptionID == prescriptionID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memIntakeRepo) MarkStatusIfPending(db *gorm.DB, id uuid.UUID, status entity.IntakeStatus, takenAt *time.Time) (int64, error) {
	l, ok := m.logs[id]
	if !ok || !l.IsPending() {
		return 0, nil
	}
	l.Status = status
	if takenAt != nil {
		at := *takenAt
		l.TakenAt = &at
	}
	l.UpdatedAt = time.Now()
	return 1, nil
}

func (m *memIntakeRepo) MarkMissedBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	var swept int64
	for _, l := range m.logs {
		if l.IsPending() && l.ScheduledDate.Before(cutoff) {
			l.Status = entity.IntakeStatusMissed
			swept++
		}
	}
	return swept, nil
}

func (m *memIntakeRepo) MarkMissedBeforeForPatient(db *gorm.DB, patientID uuid.UUID, cutoff time.Time) (int64, error) {
	var swept int64
	for _, l := range m.logs {
		if l.PatientID == patientID && l.IsPending() && l.ScheduledDate.Before(cutoff) {
			l.Status = entity.IntakeStatusMissed
			swept++
		}
	}
	return swept, nil
}

func (m *memIntakeRepo) CountPendingByPrescription(db *gorm.DB, prescriptionID uuid.UUID) (int64, error) {
	var count int64
	for _, l := range m.logs {
		if l.PrescriptionID == prescriptionID && l.IsPending() {
			count++
		}
	}
	return count, nil
}

func (m *memIntakeRepo) CountPendingByPrescriptions(db *gorm.DB, prescriptionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(prescriptionIDs))
	for _, id := range prescriptionIDs {
		count, _ := m.CountPendingByPrescription(db, id)
		if count > 0 {
			counts[id] = count
		}
	}
	return counts, nil
}

type memPrescriptionRepo struct {
	prescriptions map[uuid.UUID]*entity.Prescription
}

func newMemPrescriptionRepo(prescriptions ...*entity.Prescription) *memPrescriptionRepo {
	m := &memPrescriptionRepo{prescriptions: map[uuid.UUID]*entity.Prescription{}}
	for _, p := range prescriptions {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		m.prescriptions[p.ID] = p
	}
	return m
}

func (m *memPrescriptionRepo) Create(db *gorm.DB, prescription *entity.Prescription) error {
	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	stored := *prescription
	m.prescriptions[prescription.ID] = &stored
	return nil
}

func (m *memPrescriptionRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, nil
	}
	found := *p
	return &found, nil
}

func (m *memPrescriptionRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error) {
	var out []entity.Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPrescriptionRepo) FindByPatientIDAndStatus(db *gorm.DB, patientID uuid.UUID, status entity.PrescriptionStatus) ([]entity.Prescription, error) {
	var out []entity.Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID && p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPrescriptionRepo) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Prescription, error) {
	var out []entity.Prescription
	for _, p := range m.prescriptions {
		if p.DoctorID == doctorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPrescriptionRepo) UpdateStatusIfActive(db *gorm.DB, id uuid.UUID, status entity.PrescriptionStatus) (int64, error) {
	p, ok := m.prescriptions[id]
	if !ok || !p.IsActive() {
		return 0, nil
	}
	p.Status = status
	return 1, nil
}

type recordingAuditService struct {
	actions []string
}

func (a *recordingAuditService) LogCreate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAuditService) LogUpdate(tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAuditService) recorded(action string) bool {
	for _, got := range a.actions {
		if got == action {
			return true
		}
	}
	return false
}

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestIntakeUsecase(t *testing.T, intakeRepo *memIntakeRepo, prescriptionRepo *memPrescriptionRepo, audit *recordingAuditService) *intakeUsecase {
	t.Helper()
	var cache *service.AdherenceCache
	uc := NewIntakeUsecase(testGormDB(t), testLogger(), intakeRepo, prescriptionRepo, audit, cache).(*intakeUsecase)
	uc.now = func() time.Time { return testNow }
	return uc
}

func TestUpdateIntakeStatusSettlesPendingDose(t *testing.T) {
	patientID := uuid.New()
	dose := &entity.IntakeLog{
		ID:            uuid.New(),
		PatientID:     patientID,
		ScheduledDate: schedule.DateOnly(testNow),
		ScheduledTime: "08:00 AM",
		Status:        entity.IntakeStatusPending,
	}
	intakeRepo := newMemIntakeRepo(dose)
	audit := &recordingAuditService{}
	uc := newTestIntakeUsecase(t, intakeRepo, newMemPrescriptionRepo(), audit)

	resp, err := uc.UpdateIntakeStatus(context.Background(), patientID, dose.ID, &dto.UpdateIntakeStatusRequest{Status: "TAKEN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != string(entity.IntakeStatusTaken) {
		t.Errorf("response status = %q, want TAKEN", resp.Status)
	}
	if resp.TakenAt == nil || !resp.TakenAt.Equal(testNow) {
		t.Errorf("response taken_at = %v, want %v", resp.TakenAt, testNow)
	}
	if got := intakeRepo.logs[dose.ID].Status; got != entity.IntakeStatusTaken {
		t.Errorf("stored status = %q, want TAKEN", got)
	}
	if !audit.recorded(entity.AuditActionIntakeTaken) {
		t.Errorf("no %q audit entry recorded", entity.AuditActionIntakeTaken)
	}
}

func TestUpdateIntakeStatusRejectsTerminalDose(t *testing.T) {
	for _, terminal := range []entity.IntakeStatus{
		entity.IntakeStatusTaken,
		entity.IntakeStatusSkipped,
		entity.IntakeStatusMissed,
	} {
		t.Run(string(terminal), func(t *testing.T) {
			patientID := uuid.New()
			dose := &entity.IntakeLog{
				ID:            uuid.New(),
				PatientID:     patientID,
				ScheduledDate: schedule.DateOnly(testNow),
				ScheduledTime: "08:00 AM",
				Status:        terminal,
			}
			intakeRepo := newMemIntakeRepo(dose)
			uc := newTestIntakeUsecase(t, intakeRepo, newMemPrescriptionRepo(), &recordingAuditService{})

			_, err := uc.UpdateIntakeStatus(context.Background(), patientID, dose.ID, &dto.UpdateIntakeStatusRequest{Status: "TAKEN"})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("error = %v, want ErrInvalidTransition", err)
			}
			if got := intakeRepo.logs[dose.ID].Status; got != terminal {
				t.Errorf("stored status = %q, want %q untouched", got, terminal)
			}
		})
	}
}

func TestUpdateIntakeStatusSweepWinsOverLateSettle(t *testing.T) {
	patientID := uuid.New()
	yesterday := schedule.DateOnly(testNow).AddDate(0, 0, -1)
	dose := &entity.IntakeLog{
		ID:            uuid.New(),
		PatientID:     patientID,
		ScheduledDate: yesterday,
		ScheduledTime: "08:00 PM",
		Status:        entity.IntakeStatusPending,
	}
	intakeRepo := newMemIntakeRepo(dose)
	uc := newTestIntakeUsecase(t, intakeRepo, newMemPrescriptionRepo(), &recordingAuditService{})

	_, err := uc.UpdateIntakeStatus(context.Background(), patientID, dose.ID, &dto.UpdateIntakeStatusRequest{Status: "TAKEN"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
	if got := intakeRepo.logs[dose.ID].Status; got != entity.IntakeStatusMissed {
		t.Errorf("stored status = %q, want MISSED after the sweep", got)
	}
}

func TestUpdateIntakeStatusOwnershipAndExistence(t *testing.T) {
	owner := uuid.New()
	dose := &entity.IntakeLog{
		ID:            uuid.New(),
		PatientID:     owner,
		ScheduledDate: schedule.DateOnly(testNow),
		ScheduledTime: "08:00 AM",
		Status:        entity.IntakeStatusPending,
	}
	uc := newTestIntakeUsecase(t, newMemIntakeRepo(dose), newMemPrescriptionRepo(), &recordingAuditService{})
	req := &dto.UpdateIntakeStatusRequest{Status: "SKIPPED"}

	if _, err := uc.UpdateIntakeStatus(context.Background(), uuid.New(), dose.ID, req); !errors.Is(err, ErrIntakeNotOwned) {
		t.Errorf("another patient's settle: error = %v, want ErrIntakeNotOwned", err)
	}
	if _, err := uc.UpdateIntakeStatus(context.Background(), owner, uuid.New(), req); !errors.Is(err, ErrIntakeNotFound) {
		t.Errorf("unknown dose: error = %v, want ErrIntakeNotFound", err)
	}
}

func asNeededPrescription(patientID uuid.UUID) (*entity.Prescription, *entity.PrescriptionMedication) {
	medication := entity.PrescriptionMedication{
		ID:             uuid.New(),
		MedicationName: "Ibuprofen",
		Dosage:         "200mg",
		FrequencyCode:  schedule.FrequencyAsNeeded,
	}
	prescription := &entity.Prescription{
		ID:          uuid.New(),
		DoctorID:    uuid.New(),
		PatientID:   patientID,
		Status:      entity.PrescriptionStatusActive,
		Medications: []entity.PrescriptionMedication{medication},
	}
	return prescription, &prescription.Medications[0]
}

func TestLogAdHocIntake(t *testing.T) {
	patientID := uuid.New()
	prescription, medication := asNeededPrescription(patientID)
	intakeRepo := newMemIntakeRepo()
	audit := &recordingAuditService{}
	uc := newTestIntakeUsecase(t, intakeRepo, newMemPrescriptionRepo(prescription), audit)

	resp, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
		PrescriptionID: prescription.ID,
		MedicationID:   medication.ID,
		Notes:          "headache",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != string(entity.IntakeStatusTaken) {
		t.Errorf("status = %q, want TAKEN", resp.Status)
	}
	if resp.ScheduledTime != "09:30 AM" {
		t.Errorf("scheduled_time = %q, want the clock time 09:30 AM", resp.ScheduledTime)
	}
	if resp.ScheduledDate != "2026-03-10" {
		t.Errorf("scheduled_date = %q, want 2026-03-10", resp.ScheduledDate)
	}
	if resp.TakenAt == nil || !resp.TakenAt.Equal(testNow) {
		t.Errorf("taken_at = %v, want %v", resp.TakenAt, testNow)
	}
	if resp.MedicationName != "Ibuprofen" {
		t.Errorf("medication_name = %q, want Ibuprofen", resp.MedicationName)
	}
	if len(intakeRepo.logs) != 1 {
		t.Errorf("stored logs = %d, want 1", len(intakeRepo.logs))
	}
	if !audit.recorded(entity.AuditActionIntakeAdHoc) {
		t.Errorf("no %q audit entry recorded", entity.AuditActionIntakeAdHoc)
	}
}

func TestLogAdHocIntakeRejectsScheduledMedication(t *testing.T) {
	patientID := uuid.New()
	prescription, medication := asNeededPrescription(patientID)
	medication.FrequencyCode = schedule.FrequencyOnceDaily
	uc := newTestIntakeUsecase(t, newMemIntakeRepo(), newMemPrescriptionRepo(prescription), &recordingAuditService{})

	_, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
		PrescriptionID: prescription.ID,
		MedicationID:   medication.ID,
	})
	if !errors.Is(err, ErrNotAsNeeded) {
		t.Fatalf("error = %v, want ErrNotAsNeeded", err)
	}
}

func TestLogAdHocIntakeGuards(t *testing.T) {
	patientID := uuid.New()

	t.Run("prescription not found", func(t *testing.T) {
		uc := newTestIntakeUsecase(t, newMemIntakeRepo(), newMemPrescriptionRepo(), &recordingAuditService{})
		_, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
			PrescriptionID: uuid.New(),
			MedicationID:   uuid.New(),
		})
		if !errors.Is(err, ErrPrescriptionNotFound) {
			t.Fatalf("error = %v, want ErrPrescriptionNotFound", err)
		}
	})

	t.Run("another patient's prescription", func(t *testing.T) {
		prescription, medication := asNeededPrescription(uuid.New())
		uc := newTestIntakeUsecase(t, newMemIntakeRepo(), newMemPrescriptionRepo(prescription), &recordingAuditService{})
		_, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
			PrescriptionID: prescription.ID,
			MedicationID:   medication.ID,
		})
		if !errors.Is(err, ErrPrescriptionNotOwned) {
			t.Fatalf("error = %v, want ErrPrescriptionNotOwned", err)
		}
	})

	t.Run("cancelled prescription", func(t *testing.T) {
		prescription, medication := asNeededPrescription(patientID)
		prescription.Status = entity.PrescriptionStatusCancelled
		uc := newTestIntakeUsecase(t, newMemIntakeRepo(), newMemPrescriptionRepo(prescription), &recordingAuditService{})
		_, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
			PrescriptionID: prescription.ID,
			MedicationID:   medication.ID,
		})
		if !errors.Is(err, ErrPrescriptionNotActive) {
			t.Fatalf("error = %v, want ErrPrescriptionNotActive", err)
		}
	})

	t.Run("medication not on the prescription", func(t *testing.T) {
		prescription, _ := asNeededPrescription(patientID)
		uc := newTestIntakeUsecase(t, newMemIntakeRepo(), newMemPrescriptionRepo(prescription), &recordingAuditService{})
		_, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
			PrescriptionID: prescription.ID,
			MedicationID:   uuid.New(),
		})
		if !errors.Is(err, ErrMedicationNotFound) {
			t.Fatalf("error = %v, want ErrMedicationNotFound", err)
		}
	})
}

func TestLogAdHocIntakeDuplicateSlot(t *testing.T) {
	patientID := uuid.New()
	prescription, medication := asNeededPrescription(patientID)
	intakeRepo := newMemIntakeRepo()
	intakeRepo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "uq_intake_dose_slot"}
	uc := newTestIntakeUsecase(t, intakeRepo, newMemPrescriptionRepo(prescription), &recordingAuditService{})

	_, err := uc.LogAdHocIntake(context.Background(), patientID, &dto.LogIntakeRequest{
		PrescriptionID: prescription.ID,
		MedicationID:   medication.ID,
	})
	if !errors.Is(err, ErrDuplicateIntake) {
		t.Fatalf("error = %v, want ErrDuplicateIntake", err)
	}
}

func TestGetIntakesByDateSweepsOverdueDoses(t *testing.T) {
	patientID := uuid.New()
	yesterday := schedule.DateOnly(testNow).AddDate(0, 0, -1)
	dose := &entity.IntakeLog{
		ID:            uuid.New(),
		PatientID:     patientID,
		ScheduledDate: yesterday,
		ScheduledTime: "08:00 AM",
		Status:        entity.IntakeStatusPending,
	}
	intakeRepo := newMemIntakeRepo(dose)
	uc := newTestIntakeUsecase(t, intakeRepo, newMemPrescriptionRepo(), &recordingAuditService{})

	resp, err := uc.GetIntakesByDate(context.Background(), patientID, yesterday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("total = %d, want 1", resp.Total)
	}
	if got := resp.Intakes[0].Status; got != string(entity.IntakeStatusMissed) {
		t.Errorf("status after read = %q, want MISSED", got)
	}
}
