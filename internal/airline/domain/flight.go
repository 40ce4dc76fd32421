package domain

import (
	"fmt"
	"strings"
)

type FlightID uint64

// FlightStatus é um enum ordenado; o valor numérico é o que trafega nos eventos.
type FlightStatus uint8

const (
	StatusOnTime FlightStatus = iota
	StatusBoarding
	StatusGateClosed
	StatusDeparted
	StatusLanded
	StatusDelayed
	StatusCancelled
)

var statusNames = [...]string{
	StatusOnTime:     "On Time",
	StatusBoarding:   "Boarding",
	StatusGateClosed: "Gate Closed",
	StatusDeparted:   "Departed",
	StatusLanded:     "Landed",
	StatusDelayed:    "Delayed",
	StatusCancelled:  "Cancelled",
}

func (s FlightStatus) Valid() bool {
	return int(s) < len(statusNames)
}

func (s FlightStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("FlightStatus(%d)", uint8(s))
	}
	return statusNames[s]
}

// AllStatuses lista os status na ordem do enum.
func AllStatuses() []FlightStatus {
	statuses := make([]FlightStatus, len(statusNames))
	for i := range statuses {
		statuses[i] = FlightStatus(i)
	}
	return statuses
}

type PlaneType string

// SeatLayout é a grade de assentos de um tipo de aeronave.
type SeatLayout struct {
	Aircraft string
	Rows     int
	Columns  int
}

var planeLayouts = map[PlaneType]SeatLayout{
	"A320": {Aircraft: "Airbus A320", Rows: 30, Columns: 6},
	"A321": {Aircraft: "Airbus A321", Rows: 36, Columns: 6},
	"A332": {Aircraft: "Airbus A330", Rows: 40, Columns: 8},
	"B738": {Aircraft: "Boeing 737-800", Rows: 32, Columns: 6},
	"B744": {Aircraft: "Boeing 747-400", Rows: 52, Columns: 10},
	"B772": {Aircraft: "Boeing 777-200", Rows: 45, Columns: 9},
	"B789": {Aircraft: "Boeing 787-9", Rows: 42, Columns: 9},
	"E195": {Aircraft: "Embraer E195", Rows: 28, Columns: 4},
}

// Layout retorna a grade do tipo e se ele está na lista permitida.
func (p PlaneType) Layout() (SeatLayout, bool) {
	layout, ok := planeLayouts[p]
	return layout, ok
}

func (p PlaneType) Valid() bool {
	_, ok := planeLayouts[p]
	return ok
}

// SeatMap guarda as duas grades paralelas de um voo. Um nome vazio significa assento livre.
type SeatMap struct {
	Booked     [][]bool
	Passengers [][]string
}

func NewSeatMap(layout SeatLayout) SeatMap {
	seats := SeatMap{
		Booked:     make([][]bool, layout.Rows),
		Passengers: make([][]string, layout.Rows),
	}
	for row := 0; row < layout.Rows; row++ {
		seats.Booked[row] = make([]bool, layout.Columns)
		seats.Passengers[row] = make([]string, layout.Columns)
	}
	return seats
}

func (m SeatMap) Rows() int {
	return len(m.Booked)
}

func (m SeatMap) Columns() int {
	if len(m.Booked) == 0 {
		return 0
	}
	return len(m.Booked[0])
}

func (m SeatMap) InRange(row, column int) bool {
	if row < 0 || column < 0 || row >= len(m.Booked) || row >= len(m.Passengers) {
		return false
	}
	return column < len(m.Booked[row]) && column < len(m.Passengers[row])
}

// Matches informa se as duas grades têm exatamente as dimensões do layout.
func (m SeatMap) Matches(layout SeatLayout) bool {
	if len(m.Booked) != layout.Rows || len(m.Passengers) != layout.Rows {
		return false
	}
	for row := 0; row < layout.Rows; row++ {
		if len(m.Booked[row]) != layout.Columns || len(m.Passengers[row]) != layout.Columns {
			return false
		}
	}
	return true
}

func (m SeatMap) Clone() SeatMap {
	return SeatMap{
		Booked:     cloneGrid(m.Booked),
		Passengers: cloneGrid(m.Passengers),
	}
}

func cloneGrid[T any](grid [][]T) [][]T {
	if grid == nil {
		return nil
	}
	out := make([][]T, len(grid))
	for i, row := range grid {
		out[i] = append([]T(nil), row...)
	}
	return out
}

// FlightInput são os campos fornecidos pelo chamador ao criar ou atualizar um voo.
type FlightInput struct {
	FlightNumber  string    `json:"flightNumber"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime int64     `json:"departureTime"`
	ArrivalTime   int64     `json:"arrivalTime"`
	PlaneType     PlaneType `json:"planeType"`
}

func (in FlightInput) Validate() error {
	if strings.TrimSpace(in.FlightNumber) == "" {
		return NewError(KindInvalidInput, "flight number is required")
	}
	if !isAirportCode(in.Origin) {
		return NewError(KindInvalidInput, "origin must be a three letter airport code")
	}
	if !isAirportCode(in.Destination) {
		return NewError(KindInvalidInput, "destination must be a three letter airport code")
	}
	if !in.PlaneType.Valid() {
		return NewError(KindInvalidInput, "invalid plane type")
	}
	if in.DepartureTime >= in.ArrivalTime {
		return NewError(KindInvalidInput, "departure time must be before arrival time")
	}
	return nil
}

func isAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

type Flight struct {
	ID            FlightID
	FlightNumber  string
	Status        FlightStatus
	Origin        string
	Destination   string
	DepartureTime int64
	ArrivalTime   int64
	PlaneType     PlaneType
	Owner         string
	Seats         SeatMap
}

func (f Flight) View() FlightView {
	return FlightView{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		Status:        f.Status,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		PlaneType:     f.PlaneType,
		Owner:         f.Owner,
	}
}

func (f Flight) Clone() Flight {
	f.Seats = f.Seats.Clone()
	return f
}

func (f *Flight) apply(in FlightInput) {
	f.FlightNumber = in.FlightNumber
	f.Origin = in.Origin
	f.Destination = in.Destination
	f.DepartureTime = in.DepartureTime
	f.ArrivalTime = in.ArrivalTime
	f.PlaneType = in.PlaneType
}

// FlightView é o modelo de leitura: todos os campos exceto o mapa de assentos.
// O valor zero (origem vazia) representa um voo inexistente.
type FlightView struct {
	ID            FlightID     `json:"id"`
	FlightNumber  string       `json:"flightNumber"`
	Status        FlightStatus `json:"status"`
	Origin        string       `json:"origin"`
	Destination   string       `json:"destination"`
	DepartureTime int64        `json:"departureTime"`
	ArrivalTime   int64        `json:"arrivalTime"`
	PlaneType     PlaneType    `json:"planeType"`
	Owner         string       `json:"owner"`
}

func (v FlightView) Exists() bool {
	return v.Origin != ""
}
