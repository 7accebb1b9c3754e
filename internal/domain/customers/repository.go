package customers

import "context"

type Repository interface {
	Create(ctx context.Context, c Customer) error
	Update(ctx context.Context, c Customer) error
	GetByID(ctx context.Context, id string) (Customer, error)

	AddPet(ctx context.Context, p Pet) error
	GetPetByName(ctx context.Context, customerID, name string) (Pet, error)
	ListPets(ctx context.Context, customerID string) ([]Pet, error)
}
