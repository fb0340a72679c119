package dto

// OverviewResponse summarises the directory for the admin dashboard.
type OverviewResponse struct {
	Psychiatrists        int64            `json:"psychiatrists"`
	Patients             int64            `json:"patients"`
	AppointmentsTotal    int64            `json:"appointments_total"`
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
}
