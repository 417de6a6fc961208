package main

import (
	"log"
	"time"

	"github.com/Baaaki/course-hub/internal/config"
	"github.com/Baaaki/course-hub/internal/database"
	"github.com/Baaaki/course-hub/internal/models"
	"github.com/Baaaki/course-hub/internal/utils"
)

// Seeds a demo catalog: one admin, two teachers, two categories and a few
// courses. Safe to run repeatedly; existing rows are left alone.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	ensureUser(cfg.AdminLogin, cfg.AdminPassword, models.RoleAdmin)
	ivanov := ensureUser("ivanov", "Teacher123456", models.RoleTeacher)
	petrova := ensureUser("petrova", "Teacher123456", models.RoleTeacher)
	ensureUser("student", "Student123456", models.RoleUser)

	math := ensureCategory("Mathematics")
	prog := ensureCategory("Programming")

	ensureCourse("Algebra", "Introductory algebra", math.ID, ivanov.ID, "12 weeks")
	ensureCourse("Calculus", "Limits, derivatives, integrals", math.ID, ivanov.ID, "16 weeks")
	ensureCourse("Go Basics", "Backend development in Go", prog.ID, petrova.ID, "8 weeks")

	log.Println("Seed completed")
}

func ensureUser(login, password string, role models.Role) *models.User {
	var user models.User
	if err := database.DB.Where("login = ?", login).First(&user).Error; err == nil {
		log.Printf("User %q already exists", login)
		return &user
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password for %q: %v", login, err)
	}

	user = models.User{Login: login, PasswordHash: hash, Role: role}
	if err := database.DB.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user %q: %v", login, err)
	}
	log.Printf("Created user %q (%s)", login, role)
	return &user
}

func ensureCategory(name string) *models.Category {
	var category models.Category
	if err := database.DB.Where("name = ?", name).First(&category).Error; err == nil {
		return &category
	}

	category = models.Category{Name: name}
	if err := database.DB.Create(&category).Error; err != nil {
		log.Fatalf("Failed to create category %q: %v", name, err)
	}
	log.Printf("Created category %q", name)
	return &category
}

func ensureCourse(title, description string, categoryID, teacherID uint, duration string) {
	var course models.Course
	err := database.DB.Where("title = ? AND teacher_id = ?", title, teacherID).First(&course).Error
	if err == nil {
		return
	}

	start := time.Now().AddDate(0, 1, 0)
	course = models.Course{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
		TeacherID:   teacherID,
		Duration:    duration,
		StartDate:   &start,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		log.Fatalf("Failed to create course %q: %v", title, err)
	}
	log.Printf("Created course %q", title)
}
