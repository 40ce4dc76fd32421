package domain

// Command representa uma intenção de mutação no sistema.
type Command[T any] interface {
	CommandName() string
	Payload() T
}
