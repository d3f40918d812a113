// internal/clinic/clinic_test.go
package clinic

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medical-back/internal/database"
	"medical-back/internal/models"
)

type fixture struct {
	db    *gorm.DB
	store *Store
	d1    uint
	d2    uint
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err, "Failed to create test database")
	require.NoError(t, database.MigrateDB(db), "Failed to migrate schema")
	return &fixture{
		db:    db,
		store: NewStore(db),
		d1:    seedDoctor(t, db, "d1@x.com"),
		d2:    seedDoctor(t, db, "d2@x.com"),
	}
}

func seedDoctor(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	account := models.Account{Email: email, Password: "hash", FirstName: "F", LastName: "L", IsActive: true}
	require.NoError(t, db.Create(&account).Error)
	doctor := models.Doctor{AccountID: account.ID, PhoneNumber: "123"}
	require.NoError(t, db.Omit("Account").Create(&doctor).Error)
	return doctor.ID
}

func (f *fixture) patient(t *testing.T, doctorID uint, lastName string) *models.Patient {
	t.Helper()
	p, err := f.store.CreatePatient(context.Background(), doctorID, PatientInput{
		LastName:    lastName,
		FirstName:   "Ivan",
		PhoneNumber: "+7700",
	})
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func TestPatients(t *testing.T) {
	ctx := context.Background()

	t.Run("ScopedToDoctor", func(t *testing.T) {
		f := setup(t)
		p := f.patient(t, f.d1, "Ivanov")

		list, err := f.store.ListPatients(ctx, f.d2, "")
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = f.store.GetPatient(ctx, f.d2, p.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.store.UpdatePatient(ctx, f.d2, p.ID, PatientUpdate{Comment: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)

		got, err := f.store.GetPatient(ctx, f.d1, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ivanov", got.LastName)
	})

	t.Run("SearchByLastName", func(t *testing.T) {
		f := setup(t)
		f.patient(t, f.d1, "Ivanov")
		f.patient(t, f.d1, "Petrov")
		f.patient(t, f.d1, "Sidorova")
		f.patient(t, f.d2, "Ivanova")

		list, err := f.store.ListPatients(ctx, f.d1, "IVAN")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Ivanov", list[0].LastName)

		list, err = f.store.ListPatients(ctx, f.d1, "ov")
		require.NoError(t, err)
		assert.Len(t, list, 3)

		list, err = f.store.ListPatients(ctx, f.d1, "%")
		require.NoError(t, err)
		assert.Empty(t, list, "wildcards are matched literally")
	})

	t.Run("SearchCyrillic", func(t *testing.T) {
		f := setup(t)
		f.patient(t, f.d1, "Иванов")
		f.patient(t, f.d1, "Петрова")

		for _, search := range []string{"иванов", "ИВАН", "Ива"} {
			list, err := f.store.ListPatients(ctx, f.d1, search)
			require.NoError(t, err, search)
			require.Len(t, list, 1, search)
			assert.Equal(t, "Иванов", list[0].LastName)
		}

		list, err := f.store.ListPatients(ctx, f.d1, "ОВ")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		f := setup(t)
		p := f.patient(t, f.d1, "Ivanov")
		contact := true

		updated, err := f.store.UpdatePatient(ctx, f.d1, p.ID, PatientUpdate{
			Comment:   strPtr("allergic to penicillin"),
			IsContact: &contact,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ivanov", updated.LastName)
		assert.Equal(t, "allergic to penicillin", *updated.Comment)
		assert.True(t, updated.IsContact)

		_, err = f.store.UpdatePatient(ctx, f.d1, p.ID, PatientUpdate{LastName: strPtr("")})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Validation", func(t *testing.T) {
		f := setup(t)
		_, err := f.store.CreatePatient(ctx, f.d1, PatientInput{FirstName: "Ivan", PhoneNumber: "1"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = f.store.CreatePatient(ctx, f.d1, PatientInput{LastName: "A", FirstName: "B", PhoneNumber: "1234567890123456"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("CascadeOnDoctorDelete", func(t *testing.T) {
		f := setup(t)
		p := f.patient(t, f.d1, "Ivanov")
		require.NoError(t, f.db.Delete(&models.Doctor{}, f.d1).Error)

		var count int64
		require.NoError(t, f.db.Model(&models.Patient{}).Where("id = ?", p.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestMedications(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	qty := 5

	m, err := f.store.CreateMedication(ctx, f.d1, MedicationInput{Name: "Lidocaine", Quantity: &qty})
	require.NoError(t, err)
	require.NotNil(t, m.Quantity)
	assert.Equal(t, uint(5), *m.Quantity)

	neg := -1
	_, err = f.store.CreateMedication(ctx, f.d1, MedicationInput{Name: "Bad", Quantity: &neg})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := f.store.ListMedications(ctx, f.d2)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.store.GetMedication(ctx, f.d2, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.store.ReplaceMedication(ctx, f.d2, m.ID, MedicationInput{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrNotFound)

	replaced, err := f.store.ReplaceMedication(ctx, f.d1, m.ID, MedicationInput{Name: "Articaine"})
	require.NoError(t, err)
	assert.Equal(t, "Articaine", replaced.Name)
	assert.Nil(t, replaced.Quantity, "full update clears omitted quantity")
}

func TestProcedures(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p1 := f.patient(t, f.d1, "Ivanov")
	p2 := f.patient(t, f.d1, "Petrov")
	foreign := f.patient(t, f.d2, "Other")

	for i, pid := range []uint{p1.ID, p1.ID, p2.ID} {
		_, err := f.store.CreateProcedure(ctx, f.d1, ProcedureInput{
			PatientID: pid,
			Date:      models.NewDate(2024, time.January, i+1),
			Name:      fmt.Sprintf("Procedure %d", i),
		})
		require.NoError(t, err)
	}

	t.Run("NewestFirst", func(t *testing.T) {
		list, err := f.store.ListProcedures(ctx, f.d1, nil)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "2024-01-03", list[0].Date.String())
		assert.Equal(t, "2024-01-01", list[2].Date.String())
	})

	t.Run("ByPatient", func(t *testing.T) {
		list, err := f.store.ListProcedures(ctx, f.d1, &p1.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		_, err = f.store.ListProcedures(ctx, f.d2, &p1.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PatientMustBelongToDoctor", func(t *testing.T) {
		_, err := f.store.CreateProcedure(ctx, f.d1, ProcedureInput{
			PatientID: foreign.ID,
			Date:      models.NewDate(2024, time.February, 1),
			Name:      "Sneaky",
		})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.store.CreateProcedure(ctx, f.d1, ProcedureInput{Date: models.NewDate(2024, 1, 1), Name: "No patient"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("UpdateOnlyMutableFields", func(t *testing.T) {
		created, err := f.store.CreateProcedure(ctx, f.d1, ProcedureInput{
			PatientID: p2.ID,
			Date:      models.NewDate(2024, time.March, 1),
			Name:      "Filling",
		})
		require.NoError(t, err)

		updated, replaced, err := f.store.UpdateProcedure(ctx, f.d1, created.ID, ProcedureUpdate{
			Details: strPtr("tooth 36"),
			Image:   strPtr("file/images/a.png"),
		})
		require.NoError(t, err)
		assert.Nil(t, replaced)
		assert.Equal(t, "Filling", updated.Name)
		assert.Equal(t, "tooth 36", *updated.Details)
		assert.Equal(t, "2024-03-01", updated.Date.String())

		_, replaced, err = f.store.UpdateProcedure(ctx, f.d1, created.ID, ProcedureUpdate{Image: strPtr("file/images/b.png")})
		require.NoError(t, err)
		require.NotNil(t, replaced)
		assert.Equal(t, "file/images/a.png", *replaced)

		_, _, err = f.store.UpdateProcedure(ctx, f.d2, created.ID, ProcedureUpdate{Name: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAppointments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.patient(t, f.d1, "Ivanov")
	today := models.NewDate(2024, time.June, 10)

	mk := func(day int, from, to string) AppointmentInput {
		return AppointmentInput{
			PatientID: p.ID,
			Name:      "Checkup",
			Date:      models.NewDate(2024, time.June, day),
			TimeFrom:  models.TimeOfDay(from),
			TimeTo:    models.TimeOfDay(to),
		}
	}
	_, err := f.store.CreateAppointment(ctx, f.d1, mk(9, "09:00:00", "10:00:00"))
	require.NoError(t, err)
	late, err := f.store.CreateAppointment(ctx, f.d1, mk(10, "15:00:00", "15:30:00"))
	require.NoError(t, err)
	early, err := f.store.CreateAppointment(ctx, f.d1, mk(10, "08:00:00", "08:30:00"))
	require.NoError(t, err)
	next, err := f.store.CreateAppointment(ctx, f.d1, mk(11, "07:00:00", "07:30:00"))
	require.NoError(t, err)

	t.Run("UpcomingOrdered", func(t *testing.T) {
		list, err := f.store.ListUpcomingAppointments(ctx, f.d1, today)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []uint{early.ID, late.ID, next.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})
	})

	t.Run("OtherDoctorSeesNothing", func(t *testing.T) {
		list, err := f.store.ListUpcomingAppointments(ctx, f.d2, today)
		require.NoError(t, err)
		assert.Empty(t, list)
		_, err = f.store.GetAppointment(ctx, f.d2, early.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("TimeRangeValidated", func(t *testing.T) {
		_, err := f.store.CreateAppointment(ctx, f.d1, mk(12, "11:00:00", "10:00:00"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Replace", func(t *testing.T) {
		in := mk(20, "12:00:00", "13:00:00")
		in.Comment = strPtr("moved")
		a, err := f.store.ReplaceAppointment(ctx, f.d1, early.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-20", a.Date.String())
		assert.Equal(t, "moved", *a.Comment)

		_, err = f.store.ReplaceAppointment(ctx, f.d2, early.ID, in)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAnamnesis(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.patient(t, f.d1, "Ivanov")

	global, err := f.store.CreateAnamnesis(ctx, f.d1, AnamnesisInput{Name: "General", Description: "clinic notes"})
	require.NoError(t, err)
	assert.Nil(t, global.PatientID)

	linked, err := f.store.CreateAnamnesis(ctx, f.d1, AnamnesisInput{PatientID: &p.ID, Name: "Allergy", Description: "penicillin"})
	require.NoError(t, err)

	all, err := f.store.ListAnamnesis(ctx, f.d1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byPatient, err := f.store.ListAnamnesisForPatient(ctx, f.d1, p.ID)
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, linked.ID, byPatient[0].ID)

	_, err = f.store.ListAnamnesisForPatient(ctx, f.d2, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.store.CreateAnamnesis(ctx, f.d2, AnamnesisInput{PatientID: &p.ID, Name: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	replaced, err := f.store.ReplaceAnamnesis(ctx, f.d1, linked.ID, AnamnesisInput{Name: "Allergy", Description: "none"})
	require.NoError(t, err)
	assert.Nil(t, replaced.PatientID)

	_, err = f.store.GetAnamnesis(ctx, f.d2, linked.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcedureImages(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.patient(t, f.d1, "Ivanov")
	proc, err := f.store.CreateProcedure(ctx, f.d1, ProcedureInput{PatientID: p.ID, Date: models.NewDate(2024, 1, 1), Name: "X-ray"})
	require.NoError(t, err)

	images, err := f.store.AddProcedureImages(ctx, f.d1, proc.ID, []string{"file/images/1.png", "file/images/2.png"})
	require.NoError(t, err)
	require.Len(t, images, 2)

	_, err = f.store.AddProcedureImages(ctx, f.d1, proc.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.store.AddProcedureImages(ctx, f.d2, proc.ID, []string{"k"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.store.GetProcedureImage(ctx, f.d2, proc.ID, images[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	img, err := f.store.GetProcedureImage(ctx, f.d1, proc.ID, images[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteProcedureImage(ctx, img))

	left, err := f.store.ListProcedureImages(ctx, f.d1, proc.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "file/images/2.png", left[0].Thumbnail)

	_, err = f.store.GetProcedureImage(ctx, f.d1, proc.ID, images[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
