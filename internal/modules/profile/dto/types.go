package dto

type ProfileOutput struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Complete  bool
}
