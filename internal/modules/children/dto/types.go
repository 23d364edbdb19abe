package dto

type ChildOutput struct {
	ID        string
	FirstName string
	Age       *int
	Selected  bool
}
