package seeders

import (
	"log"
	"time"

	"dancestudio_go/database"
	"dancestudio_go/models"
	"dancestudio_go/utils"
)

// Run executes all seeders
func Run() {
	log.Println("Starting database seeding...")

	SeedStudios()
	SeedUsers()
	SeedStudents()
	SeedGroups()
	SeedHolidays()

	log.Println("Database seeding completed successfully!")
}

// SeedStudios seeds the studios table
func SeedStudios() {
	var count int64
	database.DB.Model(&models.Studio{}).Count(&count)
	if count > 0 {
		log.Println("Studios already seeded, skipping...")
		return
	}

	studios := []models.Studio{
		{
			BaseModel: models.BaseModel{ID: 1},
			Name:      "Centrum",
			Code:      "CENTRUM",
			Address:   "ul. Marszalkowska 10, Warszawa",
			City:      "Warszawa",
			Phone:     "+48 22 123 45 67",
			Active:    true,
		},
		{
			BaseModel: models.BaseModel{ID: 2},
			Name:      "Mokotow",
			Code:      "MOKOTOW",
			Address:   "ul. Pulawska 120, Warszawa",
			City:      "Warszawa",
			Phone:     "+48 22 765 43 21",
			Active:    true,
		},
	}

	for _, studio := range studios {
		if err := database.DB.Create(&studio).Error; err != nil {
			log.Printf("Failed to seed studio %s: %v", studio.Code, err)
		}
	}
	log.Printf("Seeded %d studios", len(studios))
}

// SeedUsers seeds staff accounts
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	hashed, err := utils.HashPassword("ChangeMe123!")
	if err != nil {
		log.Printf("Failed to hash seed password: %v", err)
		return
	}

	users := []models.User{
		{Username: "owner", Password: hashed, Email: "owner@dancestudio.pl", Role: "owner", StudioID: 1, Status: "active"},
		{Username: "admin.centrum", Password: hashed, Email: "admin@dancestudio.pl", Role: "admin", StudioID: 1, Status: "active"},
		{Username: "kasia.instruktor", Password: hashed, Email: "kasia@dancestudio.pl", Role: "instructor", StudioID: 1, Status: "active"},
		{Username: "marek.instruktor", Password: hashed, Email: "marek@dancestudio.pl", Role: "instructor", StudioID: 2, Status: "active"},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user %s: %v", user.Username, err)
		}
	}
	log.Printf("Seeded %d users", len(users))
}

// SeedStudents seeds demo studio members
func SeedStudents() {
	var count int64
	database.DB.Model(&models.Student{}).Count(&count)
	if count > 0 {
		log.Println("Students already seeded, skipping...")
		return
	}

	names := []string{
		"Anna Kowalska",
		"Piotr Nowak",
		"Magda Wisniewska",
		"Tomek Wojcik",
		"Ola Kaminska",
		"Bartek Lewandowski",
	}

	for i, name := range names {
		student := models.Student{
			StudioID: uint(i%2 + 1),
			FullName: name,
			Active:   true,
		}
		if err := database.DB.Create(&student).Error; err != nil {
			log.Printf("Failed to seed student %s: %v", name, err)
		}
	}
	log.Printf("Seeded %d students", len(names))
}

// SeedGroups seeds weekly class slots with rosters
func SeedGroups() {
	var count int64
	database.DB.Model(&models.Group{}).Count(&count)
	if count > 0 {
		log.Println("Groups already seeded, skipping...")
		return
	}

	groups := []models.Group{
		{StudioID: 1, Name: "Salsa podstawy", Style: "salsa", Level: "beginner", Weekday: 1, StartTime: "18:00", EndTime: "19:30", Capacity: 16, Active: true},
		{StudioID: 1, Name: "Bachata srednio", Style: "bachata", Level: "intermediate", Weekday: 3, StartTime: "19:30", EndTime: "21:00", Capacity: 14, Active: true},
		{StudioID: 2, Name: "High heels", Style: "high heels", Level: "open", Weekday: 2, StartTime: "20:00", EndTime: "21:30", Capacity: 12, Active: true},
	}

	for _, group := range groups {
		if err := database.DB.Create(&group).Error; err != nil {
			log.Printf("Failed to seed group %s: %v", group.Name, err)
			continue
		}

		var students []models.Student
		database.DB.Where("studio_id = ?", group.StudioID).Limit(3).Find(&students)
		now := time.Now()
		for _, student := range students {
			member := models.GroupMember{
				GroupID:   group.ID,
				StudentID: student.ID,
				Status:    "active",
				JoinedAt:  &now,
			}
			database.DB.Create(&member)
		}
	}
	log.Printf("Seeded %d groups", len(groups))
}

// SeedHolidays seeds the Polish public holidays that fall on weekdays in 2026
func SeedHolidays() {
	var count int64
	database.DB.Model(&models.PublicHoliday{}).Count(&count)
	if count > 0 {
		log.Println("Holidays already seeded, skipping...")
		return
	}

	holidays := []models.PublicHoliday{
		{HolidayDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), Label: "Nowy Rok"},
		{HolidayDate: time.Date(2026, 1, 6, 0, 0, 0, 0, time.Local), Label: "Trzech Kroli"},
		{HolidayDate: time.Date(2026, 4, 6, 0, 0, 0, 0, time.Local), Label: "Poniedzialek Wielkanocny"},
		{HolidayDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local), Label: "Swieto Pracy"},
		{HolidayDate: time.Date(2026, 6, 4, 0, 0, 0, 0, time.Local), Label: "Boze Cialo"},
		{HolidayDate: time.Date(2026, 11, 11, 0, 0, 0, 0, time.Local), Label: "Swieto Niepodleglosci"},
		{HolidayDate: time.Date(2026, 12, 25, 0, 0, 0, 0, time.Local), Label: "Boze Narodzenie"},
	}

	for _, holiday := range holidays {
		if err := database.DB.Create(&holiday).Error; err != nil {
			log.Printf("Failed to seed holiday %s: %v", holiday.Label, err)
		}
	}
	log.Printf("Seeded %d holidays", len(holidays))
}
