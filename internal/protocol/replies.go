package protocol

import "github.com/iliamunaev/virtual-cafe/internal/model"

const (
	Welcome       = "Welcome, May I have your order, please?"
	EmptyName     = "Error --> You must give a name to continue using the server, Disconnecting please Restart."
	ParseError    = "Error parsing order. Ensure the format is correct."
	NotReady      = "Your order is not ready for collection. Please Wait."
	Goodbye       = "I am now exiting the cafe"
	InvalidPrompt = "Please enter a valid Command. Please try again."
)

func NameInUse(name string) string {
	return "Error --> The name " + name + " is already in use, Disconnecting please Restart."
}

func OrderReceived(name string, items []model.Kind) string {
	return "Order received for " + name + ": " + model.JoinKinds(items)
}

func NoActiveOrders(name string) string {
	return "There are no active orders for " + name
}

func Collected(c model.Counts) string {
	return "You have collected: " + c.Summary()
}
