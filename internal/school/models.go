package school

import (
	"io"
	"time"

	"schooladmin/internal/attendance"
	"schooladmin/internal/ledger"
	"schooladmin/internal/results"
)

// Collection names.
const (
	Students     = "students"
	Teachers     = "teachers"
	Homeworks    = "homework"
	Notices      = "notices"
	ExamResults  = "examResults"
	Timetables   = "Timetables"
	Settings     = "settings"
	Applications = "applications"

	schoolDetailsID = "schoolDetails"
)

// Document roots of the embedded ledgers.
const (
	feesRoot   = "fees"
	salaryRoot = "salaryDetails"
)

type Student struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	RollNumber  string           `json:"rollNumber"`
	ClassName   string           `json:"className"`
	FatherName  string           `json:"fatherName,omitempty"`
	MotherName  string           `json:"motherName,omitempty"`
	DateOfBirth string           `json:"dob,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Address     string           `json:"address,omitempty"`
	PhotoURL    string           `json:"photoURL,omitempty"`
	LoginID     string           `json:"loginId,omitempty"`
	MonthlyFee  float64          `json:"monthlyFee"`
	Attendance  attendance.Marks `json:"attendance,omitempty"`
	Fees        ledger.Ledger    `json:"fees,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	DeletedAt   *time.Time       `json:"deletedAt,omitempty"`
}

// NewStudent is the admission form.
type NewStudent struct {
	Name        string  `json:"name" validate:"required"`
	RollNumber  string  `json:"rollNumber" validate:"required"`
	ClassName   string  `json:"className" validate:"required"`
	FatherName  string  `json:"fatherName"`
	MotherName  string  `json:"motherName"`
	DateOfBirth string  `json:"dob"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	PhotoURL    string  `json:"photoURL" validate:"omitempty,url"`
	LoginID     string  `json:"loginId"`
	Password    string  `json:"password" validate:"omitempty,min=6"`
	MonthlyFee  float64 `json:"monthlyFee" validate:"gte=0"`
	PaidAmount  float64 `json:"paidAmount" validate:"gte=0"`
}

// StudentProfile carries a partial profile edit; nil fields are left alone.
type StudentProfile struct {
	Name        *string  `json:"name" validate:"omitnil,min=1"`
	RollNumber  *string  `json:"rollNumber" validate:"omitnil,min=1"`
	ClassName   *string  `json:"className" validate:"omitnil,min=1"`
	FatherName  *string  `json:"fatherName"`
	MotherName  *string  `json:"motherName"`
	DateOfBirth *string  `json:"dob"`
	Phone       *string  `json:"phone"`
	Address     *string  `json:"address"`
	PhotoURL    *string  `json:"photoURL"`
	LoginID     *string  `json:"loginId"`
	MonthlyFee  *float64 `json:"monthlyFee" validate:"omitempty,gte=0"`
}

type Teacher struct {
	ID            string           `json:"id,omitempty"`
	Name          string           `json:"name"`
	Subject       string           `json:"subject,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Address       string           `json:"address,omitempty"`
	Qualification string           `json:"qualification,omitempty"`
	Salary        float64          `json:"salary"`
	PhotoURL      string           `json:"photoURL,omitempty"`
	LoginID       string           `json:"loginId,omitempty"`
	Attendance    attendance.Marks `json:"attendance,omitempty"`
	SalaryDetails ledger.Ledger    `json:"salaryDetails,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type NewTeacher struct {
	Name          string  `json:"name" validate:"required"`
	Subject       string  `json:"subject"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	Qualification string  `json:"qualification"`
	Salary        float64 `json:"salary" validate:"gte=0"`
	PhotoURL      string  `json:"photoURL" validate:"omitempty,url"`
	LoginID       string  `json:"loginId"`
	Password      string  `json:"password" validate:"omitempty,min=6"`
}

type TeacherProfile struct {
	Name          *string  `json:"name" validate:"omitnil,min=1"`
	Subject       *string  `json:"subject"`
	Phone         *string  `json:"phone"`
	Address       *string  `json:"address"`
	Qualification *string  `json:"qualification"`
	Salary        *float64 `json:"salary" validate:"omitempty,gte=0"`
	PhotoURL      *string  `json:"photoURL"`
	LoginID       *string  `json:"loginId"`
}

// ExamResult is one (student, exam) result with a denormalised student
// snapshot taken at save time.
type ExamResult struct {
	ID          string        `json:"id,omitempty"`
	StudentID   string        `json:"studentId"`
	Exam        string        `json:"exam"`
	ClassName   string        `json:"className"`
	StudentName string        `json:"studentName"`
	RollNumber  string        `json:"rollNumber"`
	FatherName  string        `json:"fatherName,omitempty"`
	PhotoURL    string        `json:"photoURL,omitempty"`
	Rows        []results.Row `json:"rows"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type Homework struct {
	ID            string    `json:"id,omitempty"`
	ClassName     string    `json:"className" validate:"required"`
	Subject       string    `json:"subject"`
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description"`
	DueDate       string    `json:"dueDate,omitempty"`
	AttachmentURL string    `json:"attachmentURL,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Notice is a class notice; an empty ClassName addresses every class.
type Notice struct {
	ID            string    `json:"id,omitempty"`
	ClassName     string    `json:"className"`
	Title         string    `json:"title" validate:"required"`
	Body          string    `json:"body"`
	AttachmentURL string    `json:"attachmentURL,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type TimetableEntry struct {
	Date    string `json:"date" validate:"required"`
	Day     string `json:"day"`
	Time    string `json:"time"`
	Subject string `json:"subject" validate:"required"`
}

// Timetable is stored with the class name as document id.
type Timetable struct {
	ClassName string           `json:"className"`
	Exams     []TimetableEntry `json:"exams" validate:"dive"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

// SchoolDetails is the letterhead used by every printable document.
type SchoolDetails struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	Website     string `json:"website"`
	LogoURL     string `json:"logoURL"`
	Affiliation string `json:"affiliation"`
	Principal   string `json:"principal"`
	Session     string `json:"session"`
}

// Application is an admission enquiry.
type Application struct {
	ID             string    `json:"id,omitempty"`
	StudentName    string    `json:"studentName" validate:"required"`
	FatherName     string    `json:"fatherName"`
	MotherName     string    `json:"motherName"`
	DateOfBirth    string    `json:"dob"`
	ClassName      string    `json:"className" validate:"required"`
	Phone          string    `json:"phone" validate:"required"`
	Address        string    `json:"address"`
	PreviousSchool string    `json:"previousSchool"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Upload is an optional file attached to a create call.
type Upload struct {
	Filename string
	Body     io.Reader
}
