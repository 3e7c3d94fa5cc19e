package controllers

import (
	"fmt"
	"lms/models"
	contentModels "lms/models/content"
	"lms/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedStaff(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	staff := &models.User{
		FirstName: "Fatma",
		LastName:  "Kaya",
		Email:     "idari@test.edu.tr",
		Password:  "hashed",
		IsStaff:   true,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

func trackSeconds(t *testing.T, db *gorm.DB, userID, weekID, materialID uint, round int, seconds uint) {
	t.Helper()
	require.NoError(t, db.Create(&contentModels.TimeTracking{
		UserID:          userID,
		WeeklyContentID: weekID,
		MaterialID:      materialID,
		AttemptRound:    round,
		Date:            today(),
		DurationSeconds: seconds,
	}).Error)
}

func TestStudentAnalyticsEmptyState(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	seedWeek(t, db, 1, 2)
	app := newTestApp(student)

	status, envelope := doJSON(t, app, "GET", "/contents/analytics", nil)
	require.Equal(t, 200, status)
	data := responseData(t, envelope)

	assert.Equal(t, "0 saat 0 dakika", data["total_time_spent"])
	assert.Equal(t, 0.0, data["overall_progress"])

	breakdown := data["weekly_breakdown"].([]interface{})
	require.Len(t, breakdown, 1)
	week := breakdown[0].(map[string]interface{})
	assert.Equal(t, 0.0, week["progress"])
	assert.Equal(t, "0 dk", week["duration"])
	assert.Empty(t, week["questions"])
	assert.Empty(t, week["quiz_results"])
}

func TestStudentAnalyticsBreakdown(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	week, materials := seedWeek(t, db, 1, 2)
	app := newTestApp(student)

	trackSeconds(t, db, student.ID, week.ID, materials[0].ID, 1, 3600)
	trackSeconds(t, db, student.ID, week.ID, materials[1].ID, 1, 120)

	status, _ := doJSON(t, app, "POST", "/contents/complete-material",
		map[string]interface{}{"material_id": materials[0].ID})
	require.Equal(t, 200, status)

	status, _ = doJSON(t, app, "POST", "/contents/ai-chat",
		map[string]interface{}{"message": "Bu konuyu anlamadım.", "weekly_content_id": week.ID})
	require.Equal(t, 200, status)

	status, envelope := doJSON(t, app, "GET", "/contents/analytics", nil)
	require.Equal(t, 200, status)
	data := responseData(t, envelope)

	assert.Equal(t, "1 saat 2 dakika", data["total_time_spent"])
	assert.Equal(t, 50.0, data["overall_progress"])

	breakdown := data["weekly_breakdown"].([]interface{})
	require.Len(t, breakdown, 1)
	weekData := breakdown[0].(map[string]interface{})
	assert.Equal(t, 50.0, weekData["progress"])
	assert.Equal(t, "62 dk", weekData["duration"])

	questions := weekData["questions"].([]interface{})
	require.Len(t, questions, 1)
	assert.Equal(t, "Bu konuyu anlamadım.", questions[0])
}

func TestTeacherAnalyticsRequiresStaff(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	app := newTestApp(student)

	status, _ := doJSON(t, app, "GET", "/contents/teacher/analytics", nil)
	assert.Equal(t, 403, status)
}

func TestTeacherAnalyticsListsStudents(t *testing.T) {
	db := setupTest(t)
	staff := seedStaff(t, db)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	week, materials := seedWeek(t, db, 1, 1)
	trackSeconds(t, db, student.ID, week.ID, materials[0].ID, 1, 600)
	app := newTestApp(staff)

	status, envelope := doJSON(t, app, "GET", "/contents/teacher/analytics", nil)
	require.Equal(t, 200, status)
	rows, ok := envelope["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 1)

	row := rows[0].(map[string]interface{})
	assert.Equal(t, float64(student.ID), row["student_id"])
	assert.Equal(t, "Ayşe Yılmaz", row["full_name"])
	assert.Equal(t, "0 saat 10 dakika", row["total_time_spent"])
}

func TestTeacherStudentDetail(t *testing.T) {
	db := setupTest(t)
	staff := seedStaff(t, db)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	week, materials := seedWeek(t, db, 1, 1)
	trackSeconds(t, db, student.ID, week.ID, materials[0].ID, 1, 300)
	app := newTestApp(staff)

	status, envelope := doJSON(t, app, "GET",
		fmt.Sprintf("/contents/teacher/analytics/%d", student.ID), nil)
	require.Equal(t, 200, status)
	data := responseData(t, envelope)

	assert.Equal(t, "Ayşe Yılmaz", data["full_name"])
	progressRows := data["progress"].([]interface{})
	require.Len(t, progressRows, 1)

	recent := data["last_7_days_time"].([]interface{})
	require.Len(t, recent, 1)
	assert.Equal(t, "5 dk", recent[0].(map[string]interface{})["duration"])

	status, envelope = doJSON(t, app, "GET", "/contents/teacher/analytics/999", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Öğrenci bulunamadı.", envelope["message"])
}

func TestBulkReportDepartmentFilterAndGrid(t *testing.T) {
	db := setupTest(t)
	staff := seedStaff(t, db)

	student := seedStudent(t, db, "ayse@test.edu.tr")
	require.NoError(t, db.Model(student).Update("department", "hemsirelik").Error)
	other := seedStudent(t, db, "mehmet@test.edu.tr")
	require.NoError(t, db.Model(other).Update("department", "isg").Error)

	week, materials := seedWeek(t, db, 1, 1)
	trackSeconds(t, db, student.ID, week.ID, materials[0].ID, 1, 900)
	trackSeconds(t, db, student.ID, week.ID, materials[0].ID, 2, 60)

	app := newTestApp(staff)
	status, envelope := doJSON(t, app, "GET", "/contents/teacher/report?department=hemsirelik", nil)
	require.Equal(t, 200, status)

	report, ok := envelope["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, report, 1)

	row := report[0].(map[string]interface{})
	assert.Equal(t, "hemsirelik", row["department"])
	assert.Equal(t, "0 saat 16 dakika", row["total_time"])

	weeks := row["weeks"].([]interface{})
	require.Len(t, weeks, reportWeekCount)

	weekOne := weeks[0].(map[string]interface{})
	assert.Equal(t, 1.0, weekOne["week_number"])
	assert.Equal(t, "15 dk", weekOne["round_1_duration"])
	assert.Equal(t, "1 dk", weekOne["round_2_duration"])

	// Weeks with no content still render as zeroed rows
	lastWeek := weeks[reportWeekCount-1].(map[string]interface{})
	assert.Equal(t, 0.0, lastWeek["progress"])
	assert.Equal(t, "0 dk", lastWeek["round_1_duration"])
}

func TestAIChatFallsBackWhenProviderDown(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	week, _ := seedWeek(t, db, 1, 1)
	app := newTestApp(student)

	status, envelope := doJSON(t, app, "POST", "/contents/ai-chat",
		map[string]interface{}{"message": "Merhaba", "weekly_content_id": week.ID})
	require.Equal(t, 200, status)
	data := responseData(t, envelope)
	assert.Equal(t, chatFallback, data["reply"])

	// The question is still recorded for analytics
	var questions int64
	db.Model(&contentModels.StudentQuestion{}).Where("user_id = ?", student.ID).Count(&questions)
	assert.EqualValues(t, 1, questions)
}

func TestAIChatAnswersWithProvider(t *testing.T) {
	db := setupTest(t)
	student := seedStudent(t, db, "ayse@test.edu.tr")
	utils.Generator = &stubGenerator{reply: "Tabii, şöyle açıklayayım."}
	app := newTestApp(student)

	status, envelope := doJSON(t, app, "POST", "/contents/ai-chat",
		map[string]interface{}{"message": "Merhaba"})
	require.Equal(t, 200, status)
	data := responseData(t, envelope)
	assert.Equal(t, "Tabii, şöyle açıklayayım.", data["reply"])

	status, _ = doJSON(t, app, "POST", "/contents/ai-chat",
		map[string]interface{}{"message": "   "})
	assert.Equal(t, 422, status)
}
