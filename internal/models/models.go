package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityStatus string

type Category string

type Transport string

type IconKind string

const (
	ActivityStatusConfirmed ActivityStatus = "Confirmed"
	ActivityStatusPending   ActivityStatus = "Pending"

	CategoryStay       Category = "Stay"
	CategoryFood       Category = "Food & Beverages"
	CategoryActivities Category = "Activities"
	CategoryTransport  Category = "Transport"
	CategoryShopping   Category = "Shopping"
	CategoryMisc       Category = "Misc"

	TransportNone   Transport = "none"
	TransportCar    Transport = "car"
	TransportTrain  Transport = "train"
	TransportFlight Transport = "flight"

	IconStay      IconKind = "stay"
	IconVisit     IconKind = "visit"
	IconFood      IconKind = "food"
	IconShopping  IconKind = "shopping"
	IconDeparture IconKind = "departure"
	IconActivity  IconKind = "activity"
	IconCar       IconKind = "car"
	IconTrain     IconKind = "train"
	IconFlight    IconKind = "flight"
)

// Categories возвращает категории расходов в порядке отображения.
func Categories() []Category {
	return []Category{CategoryStay, CategoryFood, CategoryActivities, CategoryTransport, CategoryShopping, CategoryMisc}
}

// Valid сообщает, входит ли значение в фиксированный список категорий.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Icon возвращает иконку бейджа предпочитаемого транспорта.
func (t Transport) Icon() (IconKind, bool) {
	switch t {
	case TransportCar:
		return IconCar, true
	case TransportTrain:
		return IconTrain, true
	case TransportFlight:
		return IconFlight, true
	default:
		return "", false
	}
}

type Trip struct {
	Location           string    `json:"location"`
	Days               int       `json:"days"`
	Budget             float64   `json:"budget"`
	Planned            bool      `json:"planned"`
	PreferredTransport Transport `json:"preferredTransport"`
}

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Activity struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Time            string         `json:"time"`
	Location        string         `json:"location"`
	Status          ActivityStatus `json:"status"`
	Day             int            `json:"day"`
	Description     string         `json:"description,omitempty"`
	Rating          *float64       `json:"rating,omitempty"`
	RatingEstimated bool           `json:"ratingEstimated,omitempty"`
	Suggested       bool           `json:"suggested"`
}

type Expense struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Amount   float64  `json:"amount"`
	Category Category `json:"category"`
	Date     string   `json:"date"`
}

type Place struct {
	Name    string   `json:"name"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Address string   `json:"address,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
	PlaceID string   `json:"placeId,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type TripHeader struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"-"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	SpentINR    int64     `json:"spentINR"`
	Places      int       `json:"places"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
