package controllers

import (
	"lms/config"
	"lms/models"
	contentModels "lms/models/content"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekLockedBeforeReleaseDate(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")

	releaseDate := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	week := &contentModels.WeeklyContent{
		WeekNumber:  1,
		Title:       "1. Hafta",
		ReleaseDate: &releaseDate,
	}
	require.NoError(t, db.Create(week).Error)

	locked, reason := isWeekLocked(db, student, week)
	assert.True(t, locked)
	assert.Equal(t, "Bu içerik 02.01.2030 tarihinde erişime açılacaktır.", reason)
}

func TestWeekLockedUntilPreviousCompleted(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	weekOne, _ := seedWeek(t, db, 1, 1)
	weekTwo, _ := seedWeek(t, db, 2, 1)

	locked, reason := isWeekLocked(db, student, weekTwo)
	assert.True(t, locked)
	assert.Equal(t, "Bu haftayı açmak için lütfen 1. haftayı %100 tamamlayın.", reason)

	// A started but unfinished previous week keeps the lock
	progress, err := getOrCreateProgress(db, student.ID, weekOne.ID)
	require.NoError(t, err)
	locked, _ = isWeekLocked(db, student, weekTwo)
	assert.True(t, locked)

	progress.CompletionPercentage = 100
	progress.IsCompleted = true
	require.NoError(t, db.Save(progress).Error)

	locked, reason = isWeekLocked(db, student, weekTwo)
	assert.False(t, locked)
	assert.Empty(t, reason)
}

func TestWeekOneOpenByDefault(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	week, _ := seedWeek(t, db, 1, 1)

	locked, reason := isWeekLocked(db, student, week)
	assert.False(t, locked)
	assert.Empty(t, reason)
}

func TestStaffAndTeacherBypassLocks(t *testing.T) {
	db := setupTest(t)

	releaseDate := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	week := &contentModels.WeeklyContent{
		WeekNumber:  3,
		Title:       "3. Hafta",
		ReleaseDate: &releaseDate,
	}
	require.NoError(t, db.Create(week).Error)

	teacher := &models.User{Email: "hoca@test.edu.tr", Password: "hashed", IsTeacher: true}
	require.NoError(t, db.Create(teacher).Error)
	staff := &models.User{Email: "idari@test.edu.tr", Password: "hashed", IsStaff: true}
	require.NoError(t, db.Create(staff).Error)

	locked, _ := isWeekLocked(db, teacher, week)
	assert.False(t, locked)
	locked, _ = isWeekLocked(db, staff, week)
	assert.False(t, locked)
}

func TestIntroGateWhenEnabled(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	week, _ := seedWeek(t, db, 1, 1)

	config.AppConfig.IntroGateEnabled = true

	locked, reason := isWeekLocked(db, student, week)
	assert.True(t, locked)
	assert.Equal(t, "Devam etmek için lütfen genel tanıtım videosunu izleyin.", reason)

	app := newTestApp(student)
	status, envelope := doJSON(t, app, "POST", "/contents/weeks/complete-intro", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "Genel tanıtım tamamlandı. Sistem kilidi açıldı.", envelope["message"])

	locked, _ = isWeekLocked(db, student, week)
	assert.False(t, locked)
}
