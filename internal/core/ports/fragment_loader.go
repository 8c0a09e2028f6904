package ports

import "go.trai.ch/fin/internal/core/domain"

// FragmentLoader reads and decodes one JSON manifest fragment file.
//
//go:generate mockgen -source=fragment_loader.go -destination=mocks/mock_fragment_loader.go -package=mocks
type FragmentLoader interface {
	LoadFragments(path string) ([]domain.Fragment, error)
}
