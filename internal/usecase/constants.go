package usecase

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)
