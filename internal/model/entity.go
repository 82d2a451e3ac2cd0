package model

type LoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	Member Member `json:"member"`
}

type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
	AssigneeID  string   `json:"assigneeId"`
}

type MoveTaskRequest struct {
	Status Status `json:"status" binding:"required"`
}

type AddMemberRequest struct {
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
}

type RoutineRequest struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	DefaultPriority Priority `json:"defaultPriority"`
}

type GoogleConnectRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
	SheetID     string `json:"sheetId"`
}

type StatusResponse struct {
	Offline bool   `json:"offline"`
	Notice  string `json:"notice,omitempty"`
	Drive   bool   `json:"drive"`
	Sheets  bool   `json:"sheets"`
	Catalog bool   `json:"catalog"`
}
