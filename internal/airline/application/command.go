package application

import (
	"github.com/mateusmacedo/airline-registry/internal/airline/domain"
	pkgDomain "github.com/mateusmacedo/airline-registry/pkg/domain"
)

const (
	AddFlightCommand    = "AddFlight"
	UpdateFlightCommand = "UpdateFlight"
	DeleteFlightCommand = "DeleteFlight"
	BookSeatCommand     = "BookSeat"
	CancelSeatCommand   = "CancelSeat"
)

// CommandNames lista os tópicos de comando, na ordem em que são registrados.
var CommandNames = []string{AddFlightCommand, UpdateFlightCommand, DeleteFlightCommand, BookSeatCommand, CancelSeatCommand}

// AddFlightData contém os dados para cadastrar um voo. Caller vira o dono do voo.
type AddFlightData struct {
	Flight domain.FlightInput `json:"flight"`
	Caller string             `json:"caller"`
}

type addFlightCommand struct {
	data AddFlightData
}

func (c addFlightCommand) CommandName() string {
	return AddFlightCommand
}

func (c addFlightCommand) Payload() AddFlightData {
	return c.data
}

func NewAddFlightCommand(data AddFlightData) pkgDomain.Command[AddFlightData] {
	return addFlightCommand{data: data}
}

type UpdateFlightData struct {
	FlightID domain.FlightID     `json:"flightId"`
	Flight   domain.FlightInput  `json:"flight"`
	Status   domain.FlightStatus `json:"status"`
	Caller   string              `json:"caller"`
}

type updateFlightCommand struct {
	data UpdateFlightData
}

func (c updateFlightCommand) CommandName() string {
	return UpdateFlightCommand
}

func (c updateFlightCommand) Payload() UpdateFlightData {
	return c.data
}

func NewUpdateFlightCommand(data UpdateFlightData) pkgDomain.Command[UpdateFlightData] {
	return updateFlightCommand{data: data}
}

type DeleteFlightData struct {
	FlightID domain.FlightID `json:"flightId"`
	Caller   string          `json:"caller"`
}

type deleteFlightCommand struct {
	data DeleteFlightData
}

func (c deleteFlightCommand) CommandName() string {
	return DeleteFlightCommand
}

func (c deleteFlightCommand) Payload() DeleteFlightData {
	return c.data
}

func NewDeleteFlightCommand(data DeleteFlightData) pkgDomain.Command[DeleteFlightData] {
	return deleteFlightCommand{data: data}
}

// SeatData identifica um assento e o passageiro; serve para reservar e para cancelar.
type SeatData struct {
	FlightID      domain.FlightID `json:"flightId"`
	Row           int             `json:"row"`
	Column        int             `json:"column"`
	PassengerName string          `json:"passengerName"`
	Caller        string          `json:"caller"`
}

type bookSeatCommand struct {
	data SeatData
}

func (c bookSeatCommand) CommandName() string {
	return BookSeatCommand
}

func (c bookSeatCommand) Payload() SeatData {
	return c.data
}

func NewBookSeatCommand(data SeatData) pkgDomain.Command[SeatData] {
	return bookSeatCommand{data: data}
}

type cancelSeatCommand struct {
	data SeatData
}

func (c cancelSeatCommand) CommandName() string {
	return CancelSeatCommand
}

func (c cancelSeatCommand) Payload() SeatData {
	return c.data
}

func NewCancelSeatCommand(data SeatData) pkgDomain.Command[SeatData] {
	return cancelSeatCommand{data: data}
}
