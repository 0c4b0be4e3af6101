package emsservice

// DailyResponse ответ EMS на запрос доступности за день
type DailyResponse struct {
	Success bool       `json:"success"`
	Data    *DailyData `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

// DailyData доступность всех помещений на дату
type DailyData struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Rooms []Room `json:"rooms"`
}

// Room модель помещения из EMS
type Room struct {
	RoomName     string `json:"roomName"`
	RoomType     string `json:"roomType"`
	BuildingName string `json:"buildingName"`
	Slots        []Slot `json:"slots"`
}

// Slot свободный интервал помещения ("09:00" - "10:30")
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
