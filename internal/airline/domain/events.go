package domain

import "context"

const (
	EventFlightAdded   = "FlightAdded"
	EventFlightChanged = "FlightChanged"
	EventSeatChanged   = "SeatChanged"
)

// FlightDetails acompanha FlightAdded e FlightChanged de voos existentes.
type FlightDetails struct {
	Status        FlightStatus `json:"status"`
	Origin        string       `json:"origin"`
	Destination   string       `json:"destination"`
	DepartureTime int64        `json:"departureTime"`
	ArrivalTime   int64        `json:"arrivalTime"`
	PlaneType     PlaneType    `json:"planeType"`
	Owner         string       `json:"owner"`
}

type NotificationPayload struct {
	FlightID     FlightID `json:"flightId"`
	FlightNumber string   `json:"flightNumber"`
	*FlightDetails
}

type Notification struct {
	Name    string
	Payload NotificationPayload
}

// Publisher recebe as notificações do registro, já em ordem total.
// É chamado com o registro travado: não pode chamar o registro de volta.
type Publisher interface {
	Publish(ctx context.Context, notification Notification)
}

func flightNotification(name string, f Flight) Notification {
	return Notification{
		Name: name,
		Payload: NotificationPayload{
			FlightID:     f.ID,
			FlightNumber: f.FlightNumber,
			FlightDetails: &FlightDetails{
				Status:        f.Status,
				Origin:        f.Origin,
				Destination:   f.Destination,
				DepartureTime: f.DepartureTime,
				ArrivalTime:   f.ArrivalTime,
				PlaneType:     f.PlaneType,
				Owner:         f.Owner,
			},
		},
	}
}

func briefNotification(name string, f Flight) Notification {
	return Notification{
		Name: name,
		Payload: NotificationPayload{
			FlightID:     f.ID,
			FlightNumber: f.FlightNumber,
		},
	}
}
