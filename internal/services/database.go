package services

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medimart_api/internal/models"
)

// InitDB initializes the database connection with connection pooling
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
	return db, nil
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Doctor{},
		&models.Timing{},
		&models.WorkingDay{},
		&models.Clinic{},
		&models.Location{},
		&models.Category{},
		&models.SubCategory{},
		&models.SubSubCategory{},
		&models.Product{},
		&models.Plan{},
		&models.Appointment{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.ShippingAddress{},
		&models.GatewayCallback{},
		&models.PermissionCategory{},
		&models.Permission{},
		&models.Group{},
		&models.UserPermission{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migrations completed")
	return nil
}

// SeedDefaults inserts the built-in roles and subscription plans if
// they are not present yet.
func SeedDefaults(db *gorm.DB) error {
	roles := []string{models.RoleAdmin, models.RolePatient, models.RoleDoctor, models.RoleClinic}
	for _, name := range roles {
		var role models.Role
		err := db.Where("name = ?", name).FirstOrCreate(&role, models.Role{Name: name}).Error
		if err != nil {
			return err
		}
	}

	monthly := "FREQ=MONTHLY"
	plans := []models.Plan{
		{UserType: models.OrderableTypeDoctor, Name: models.PlanNameBasic, Price: 0, Currency: "INR", StartDate: time.Now()},
		{UserType: models.OrderableTypeDoctor, Name: models.PlanNamePro, Price: 999, Currency: "INR", StartDate: time.Now(), RenewalInterval: &monthly},
		{UserType: models.OrderableTypeClinic, Name: models.PlanNameBasic, Price: 0, Currency: "INR", StartDate: time.Now()},
		{UserType: models.OrderableTypeClinic, Name: models.PlanNamePro, Price: 2499, Currency: "INR", StartDate: time.Now(), RenewalInterval: &monthly},
	}
	for _, plan := range plans {
		var existing models.Plan
		err := db.Where("user_type = ? AND name = ?", plan.UserType, plan.Name).
			FirstOrCreate(&existing, plan).Error
		if err != nil {
			return err
		}
	}
	return nil
}
