// Command seed fills the database with fake doctors, patients and an
// administrator account, so the API can be explored right after a fresh setup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"clinic-booking/internal/clinic"
	"clinic-booking/internal/configs"
	"clinic-booking/internal/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
)

var configPath = flag.String("config", "", "Config file path")

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
}

var bloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Parse()
	_ = godotenv.Load()

	if *configPath == "" {
		log.Fatal("no config file path was given")
	}
	config, err := configs.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	dbConn, err := database.NewConnection(config)
	if err != nil {
		log.Fatal(err)
	}
	defer dbConn.Close()

	gofakeit.Seed(time.Now().UnixNano())

	service := clinic.NewService(dbConn)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	password := getEnv("SEED_PASSWORD", "changeme")

	if err = seedAdministrator(ctx, service, password); err != nil {
		log.Fatalf("seed administrator: %v", err)
	}
	if err = seedDoctors(ctx, service, getEnvInt("SEED_DOCTORS", 5), password); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err = seedPatients(ctx, service, getEnvInt("SEED_PATIENTS", 20), password); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedAdministrator(ctx context.Context, service clinic.Service, password string) error {
	email := getEnv("SEED_ADMIN_EMAIL", "admin@clinic.test")
	account, err := service.RegisterAdministrator(ctx, clinic.AdministratorRegistration{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	log.Printf("administrator seeded: %s (%s)", account.Email, account.UUID)
	return nil
}

func seedDoctors(ctx context.Context, service clinic.Service, count int, password string) error {
	log.Printf("seeding %d doctors", count)
	for i := 0; i < count; i++ {
		registration := clinic.DoctorRegistration{
			Name:          gofakeit.FirstName(),
			Surname:       gofakeit.LastName(),
			Email:         fmt.Sprintf("doctor%d.%s", i, gofakeit.Email()),
			Password:      password,
			Telephone:     gofakeit.Phone(),
			Specialty:     specialties[gofakeit.Number(0, len(specialties)-1)],
			LicenseNumber: fmt.Sprintf("LIC-%d", gofakeit.Number(100000, 999999)),
		}
		doctor, err := service.RegisterDoctor(ctx, registration)
		if err != nil {
			return err
		}
		log.Printf("doctor seeded: %s %s (%s)", doctor.Name, doctor.Surname, doctor.UUID)
	}
	return nil
}

func seedPatients(ctx context.Context, service clinic.Service, count int, password string) error {
	log.Printf("seeding %d patients", count)
	for i := 0; i < count; i++ {
		birthday := gofakeit.DateRange(
			time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2008, time.December, 31, 0, 0, 0, 0, time.UTC))
		registration := clinic.PatientRegistration{
			Name:      gofakeit.FirstName(),
			Surname:   gofakeit.LastName(),
			Email:     fmt.Sprintf("patient%d.%s", i, gofakeit.Email()),
			Password:  password,
			Telephone: gofakeit.Phone(),
			BloodType: bloodTypes[gofakeit.Number(0, len(bloodTypes)-1)],
			Gender:    gofakeit.Gender(),
			Birthday:  birthday.Format("2006-01-02"),
		}
		patient, err := service.RegisterPatient(ctx, registration)
		if err != nil {
			return err
		}
		log.Printf("patient seeded: %s %s (%s)", patient.Name, patient.Surname, patient.UUID)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
