package application

import (
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
)

const (
	GetFlightQuery             = "GetFlight"
	ListFlightIDsQuery         = "ListFlightIDs"
	GetSeatAvailabilityQuery   = "GetSeatAvailability"
	GetSeatPassengerNamesQuery = "GetSeatPassengerNames"
)

var QueryNames = []string{GetFlightQuery, ListFlightIDsQuery, GetSeatAvailabilityQuery, GetSeatPassengerNamesQuery}

type FlightData struct {
	FlightID domain.FlightID `json:"flightId"`
}

type getFlightQuery struct {
	data FlightData
}

func (q getFlightQuery) QueryName() string {
	return GetFlightQuery
}

func (q getFlightQuery) Payload() FlightData {
	return q.data
}

func NewGetFlightQuery(data FlightData) pkgDomain.Query[FlightData] {
	return getFlightQuery{data: data}
}

type ListFlightIDsData struct{}

type listFlightIDsQuery struct{}

func (q listFlightIDsQuery) QueryName() string {
	return ListFlightIDsQuery
}

func (q listFlightIDsQuery) Payload() ListFlightIDsData {
	return ListFlightIDsData{}
}

func NewListFlightIDsQuery() pkgDomain.Query[ListFlightIDsData] {
	return listFlightIDsQuery{}
}

type getSeatAvailabilityQuery struct {
	data FlightData
}

func (q getSeatAvailabilityQuery) QueryName() string {
	return GetSeatAvailabilityQuery
}

func (q getSeatAvailabilityQuery) Payload() FlightData {
	return q.data
}

func NewGetSeatAvailabilityQuery(data FlightData) pkgDomain.Query[FlightData] {
	return getSeatAvailabilityQuery{data: data}
}

type SeatPassengerNamesData struct {
	FlightID domain.FlightID `json:"flightId"`
	Caller   string          `json:"caller"`
}

type getSeatPassengerNamesQuery struct {
	data SeatPassengerNamesData
}

func (q getSeatPassengerNamesQuery) QueryName() string {
	return GetSeatPassengerNamesQuery
}

func (q getSeatPassengerNamesQuery) Payload() SeatPassengerNamesData {
	return q.data
}

func NewGetSeatPassengerNamesQuery(data SeatPassengerNamesData) pkgDomain.Query[SeatPassengerNamesData] {
	return getSeatPassengerNamesQuery{data: data}
}
