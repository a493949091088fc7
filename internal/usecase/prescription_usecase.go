package usecase

import (
	"context"
	"errors"
	"time"

	"medlink-tracker/internal/converter"
	"medlink-tracker/internal/delivery/dto"
	"medlink-tracker/internal/domain/entity"
	"medlink-tracker/internal/domain/repository"
	"medlink-tracker/internal/domain/schedule"
	"medlink-tracker/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPrescriptionNotFound  = errors.New("prescription not found")
	ErrPrescriptionNotActive = errors.New("prescription is not active")
	ErrPrescriptionNotOwned  = errors.New("prescription does not belong to you")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrInvalidExpiryDate     = errors.New("expiry date must be after the prescribed date")
	ErrInvalidDateFormat     = errors.New("invalid date format, use YYYY-MM-DD")
	ErrUnknownFrequency      = errors.New("unknown frequency code")
	ErrDuplicateIntake       = errors.New("an intake log already exists for this dose slot")
)

type PrescriptionUsecase interface {
	CreatePrescription(ctx context.Context, doctorID uuid.UUID, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetPrescription(ctx context.Context, id uuid.UUID) (*dto.PrescriptionResponse, error)
	GetPrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PrescriptionListResponse, error)
	GetActivePrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PrescriptionListResponse, error)
	GetPrescriptionsByDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.PrescriptionListResponse, error)
	CancelPrescription(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type prescriptionUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	intakeRepo       repository.IntakeLogRepository
	patientRepo      repository.PatientProfileRepository
	auditService     service.AuditService
	now              func() time.Time
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	intakeRepo repository.IntakeLogRepository,
	patientRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:               db,
		log:              log,
		prescriptionRepo: prescriptionRepo,
		intakeRepo:       intakeRepo,
		patientRepo:      patientRepo,
		auditService:     auditService,
		now:              time.Now,
	}
}

// CreatePrescription creates a prescription and materializes every dose
// obligation for its medication orders in one transaction.
//
// Flow:
//  1. Validate the patient exists
//  2. Validate dates: expiry must be strictly after today (prescribed date)
//  3. Expand each medication order into PENDING intake logs
//  4. Insert prescription + medications + intake logs atomically; if any
//     insert fails the whole creation rolls back (no orphaned prescription
//     without its doses)
func (u *prescriptionUsecase) CreatePrescription(ctx context.Context, doctorID uuid.UUID, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	patient, err := u.patientRepo.FindByUserID(u.db.WithContext(ctx), req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	expiryDate, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	now := u.now()
	prescribedDate := schedule.DateOnly(now)
	expiryDate = schedule.DateOnly(expiryDate)
	if !expiryDate.After(prescribedDate) {
		return nil, ErrInvalidExpiryDate
	}

	// Reject unknown frequency codes before touching the database
	for _, med := range req.Medications {
		if !schedule.IsKnownFrequency(med.Frequency) {
			return nil, ErrUnknownFrequency
		}
	}

	prescription := &entity.Prescription{
		DoctorID:       doctorID,
		PatientID:      req.PatientID,
		Diagnosis:      req.Diagnosis,
		Notes:          req.Notes,
		PrescribedDate: prescribedDate,
		ExpiryDate:     expiryDate,
		Status:         entity.PrescriptionStatusActive,
		Medications:    make([]entity.PrescriptionMedication, len(req.Medications)),
	}
	for i, med := range req.Medications {
		durationDays := med.DurationDays
		if durationDays <= 0 {
			durationDays = entity.DefaultDurationDays
		}
		prescription.Medications[i] = entity.PrescriptionMedication{
			MedicationName: med.MedicationName,
			Dosage:         med.Dosage,
			FrequencyCode:  med.Frequency,
			Instructions:   med.Instructions,
			DurationDays:   durationDays,
		}
	}

	var logs []entity.IntakeLog
	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.prescriptionRepo.Create(tx, prescription); err != nil {
			if isForeignKeyError(err, "doctor") {
				return ErrDoctorNotFound
			}
			return err
		}

		for i := range prescription.Medications {
			medLogs, err := schedule.Expand(&prescription.Medications[i], prescription.PatientID, prescribedDate, expiryDate)
			if err != nil {
				return err
			}
			logs = append(logs, medLogs...)
		}

		if err := u.intakeRepo.CreateBatch(tx, logs); err != nil {
			if isDuplicateKeyError(err, "uq_intake_dose_slot") {
				return ErrDuplicateIntake
			}
			return err
		}

		return u.auditService.LogCreate(tx, &doctorID, entity.AuditActionPrescriptionCreate,
			"prescription", prescription.ID.String(), map[string]interface{}{
				"patient_id":  prescription.PatientID.String(),
				"diagnosis":   prescription.Diagnosis,
				"expiry_date": req.ExpiryDate,
				"medications": len(prescription.Medications),
			})
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidWindow):
			return nil, ErrInvalidExpiryDate
		case errors.Is(err, schedule.ErrUnknownFrequency):
			return nil, ErrUnknownFrequency
		case errors.Is(err, ErrDuplicateIntake):
			return nil, ErrDuplicateIntake
		case errors.Is(err, ErrDoctorNotFound):
			return nil, ErrDoctorNotFound
		}
		u.log.Errorf("Failed to create prescription for patient %s: %+v", req.PatientID, err)
		return nil, err
	}

	u.log.Infof("Prescription created: id=%s, doctor=%s, patient=%s, medications=%d",
		prescription.ID, doctorID, prescription.PatientID, len(prescription.Medications))

	ev := schedule.Evaluate(prescription, int64(len(logs)), now)
	return converter.PrescriptionToResponse(prescription, ev), nil
}

// GetPrescription loads one prescription and re-evaluates its lifecycle:
// overdue doses are swept to MISSED first, then an expired prescription
// whose doses are all settled is auto-completed.
func (u *prescriptionUsecase) GetPrescription(ctx context.Context, id uuid.UUID) (*dto.PrescriptionResponse, error) {
	prescription, err := u.prescriptionRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", id, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	ev, err := u.evaluateLifecycle(ctx, prescription)
	if err != nil {
		return nil, err
	}

	return converter.PrescriptionToResponse(prescription, ev), nil
}

func (u *prescriptionUsecase) GetPrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PrescriptionListResponse, error) {
	prescriptions, err := u.prescriptionRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for patient %s: %+v", patientID, err)
		return nil, err
	}
	return u.buildListResponse(ctx, prescriptions)
}

func (u *prescriptionUsecase) GetActivePrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PrescriptionListResponse, error) {
	prescriptions, err := u.prescriptionRepo.FindByPatientIDAndStatus(u.db.WithContext(ctx), patientID, entity.PrescriptionStatusActive)
	if err != nil {
		u.log.Warnf("Failed to find active prescriptions for patient %s: %+v", patientID, err)
		return nil, err
	}
	return u.buildListResponse(ctx, prescriptions)
}

func (u *prescriptionUsecase) GetPrescriptionsByDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.PrescriptionListResponse, error) {
	prescriptions, err := u.prescriptionRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return u.buildListResponse(ctx, prescriptions)
}

// CancelPrescription performs the explicit ACTIVE -> CANCELLED transition.
// Only the issuing doctor or the recipient patient may cancel.
func (u *prescriptionUsecase) CancelPrescription(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	prescription, err := u.prescriptionRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", id, err)
		return err
	}
	if prescription == nil {
		return ErrPrescriptionNotFound
	}

	if prescription.DoctorID != userID && prescription.PatientID != userID {
		return ErrPrescriptionNotOwned
	}

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update: only one terminal transition ever wins
		rows, err := u.prescriptionRepo.UpdateStatusIfActive(tx, id, entity.PrescriptionStatusCancelled)
		if err != nil {
			u.log.Warnf("Failed to cancel prescription %s: %+v", id, err)
			return err
		}
		if rows == 0 {
			return ErrPrescriptionNotActive
		}

		u.log.Infof("Prescription cancelled: id=%s, by=%s", id, userID)
		return u.auditService.LogUpdate(tx, &userID, entity.AuditActionPrescriptionCancel,
			"prescription", id.String(),
			string(entity.PrescriptionStatusActive), string(entity.PrescriptionStatusCancelled))
	})
}

// evaluateLifecycle applies lazy MISSED evaluation and the lifecycle rules
// to one prescription, persisting an ACTIVE -> COMPLETED transition when the
// rules produce one
func (u *prescriptionUsecase) evaluateLifecycle(ctx context.Context, p *entity.Prescription) (schedule.Evaluation, error) {
	now := u.now()
	db := u.db.WithContext(ctx)

	if _, err := u.intakeRepo.MarkMissedBeforeForPatient(db, p.PatientID, schedule.MissedCutoff(now)); err != nil {
		// Sweeping is best-effort on reads; report the stored state instead
		// of failing the whole request
		u.log.Warnf("Lazy missed sweep failed for patient %s (non-fatal): %+v", p.PatientID, err)
	}

	pending, err := u.intakeRepo.CountPendingByPrescription(db, p.ID)
	if err != nil {
		u.log.Warnf("Failed to count pending doses for prescription %s: %+v", p.ID, err)
		return schedule.Evaluation{}, err
	}

	ev := schedule.Evaluate(p, pending, now)
	if ev.Status != p.Status {
		if err := u.persistCompletion(db, p, ev.Status); err != nil {
			return schedule.Evaluation{}, err
		}
	}
	return ev, nil
}

func (u *prescriptionUsecase) persistCompletion(db *gorm.DB, p *entity.Prescription, status entity.PrescriptionStatus) error {
	rows, err := u.prescriptionRepo.UpdateStatusIfActive(db, p.ID, status)
	if err != nil {
		u.log.Warnf("Failed to persist lifecycle transition for prescription %s: %+v", p.ID, err)
		return err
	}
	if rows > 0 {
		u.log.Infof("Prescription auto-completed: id=%s", p.ID)
		if err := u.auditService.LogUpdate(db, nil, entity.AuditActionPrescriptionComplete,
			"prescription", p.ID.String(), string(p.Status), string(status)); err != nil {
			u.log.Warnf("Failed to audit auto-completion (non-fatal): %+v", err)
		}
	}
	p.Status = status
	return nil
}

func (u *prescriptionUsecase) buildListResponse(ctx context.Context, prescriptions []entity.Prescription) (*dto.PrescriptionListResponse, error) {
	now := u.now()
	db := u.db.WithContext(ctx)

	if len(prescriptions) > 0 {
		// One lazy sweep covers every prescription in the list; they all
		// belong to the query's patient or doctor
		if _, err := u.intakeRepo.MarkMissedBefore(db, schedule.MissedCutoff(now)); err != nil {
			u.log.Warnf("Lazy missed sweep failed (non-fatal): %+v", err)
		}
	}

	ids := make([]uuid.UUID, len(prescriptions))
	for i := range prescriptions {
		ids[i] = prescriptions[i].ID
	}
	pendingCounts, err := u.intakeRepo.CountPendingByPrescriptions(db, ids)
	if err != nil {
		u.log.Warnf("Failed to count pending doses: %+v", err)
		return nil, err
	}

	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		p := &prescriptions[i]
		ev := schedule.Evaluate(p, pendingCounts[p.ID], now)
		if ev.Status != p.Status {
			if err := u.persistCompletion(db, p, ev.Status); err != nil {
				return nil, err
			}
		}
		responses[i] = *converter.PrescriptionToResponse(p, ev)
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: responses,
		Total:         len(responses),
	}, nil
}
