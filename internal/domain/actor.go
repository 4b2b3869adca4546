package domain

// ActorRole is the relation of the requesting user to a booking,
// derived once per request and passed down the pipeline
type ActorRole string

const (
	RoleCustomer  ActorRole = "customer"
	RoleProvider  ActorRole = "provider"
	RoleAdmin     ActorRole = "admin"
	RoleUnrelated ActorRole = "unrelated"
)

// ResolveActorRole определяет роль пользователя по отношению к бронированию.
// isAdmin приходит из слоя аутентификации, владение - из самого бронирования.
func ResolveActorRole(b *Booking, userID int64, isAdmin bool) ActorRole {
	switch {
	case isAdmin:
		return RoleAdmin
	case b.CustomerID == userID:
		return RoleCustomer
	case b.ProviderID == userID:
		return RoleProvider
	default:
		return RoleUnrelated
	}
}

// IsParty returns true for the two roles that own a side of the booking
func (r ActorRole) IsParty() bool {
	return r == RoleCustomer || r == RoleProvider
}

// Actor identifies who authored a status history entry: a user or the system
// (the auto-completion sweeper). Replaces the usual "user id 0 = system" hack.
type Actor struct {
	UserID int64
	System bool
}

// UserActor история от имени пользователя
func UserActor(userID int64) Actor {
	return Actor{UserID: userID}
}

// SystemActor история от имени системы (sweeper)
func SystemActor() Actor {
	return Actor{System: true}
}
