package directory

import "time"

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	DepartmentID string    `json:"departmentId"`
	LeaderID     string    `json:"leaderId"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HeadID    string    `json:"headId"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserFilter struct {
	DepartmentID string
	LeaderID     string
	Role         string
	Query        string
	Limit        int
	Offset       int
}

type NewUser struct {
	Email        string
	Name         string
	Role         string
	DepartmentID string
	LeaderID     string
	Password     string
}
