package http

import (
	"net/http"
	"strings"

	"github.com/YelzhanWeb/qrdine/internal/domain"
	"github.com/YelzhanWeb/qrdine/internal/interfaces"
)

// Authenticator resolves the bearer token on staff requests into a
// principal carrying venue and role claims. Token provisioning is
// external; unknown tokens are simply unauthenticated.
type Authenticator struct {
	staff interfaces.StaffRepository
}

func NewAuthenticator(staff interfaces.StaffRepository) *Authenticator {
	return &Authenticator{staff: staff}
}

func (a *Authenticator) Principal(r *http.Request) (domain.StaffPrincipal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return domain.StaffPrincipal{}, domain.E(domain.KindUnauthenticated, "missing authorization header")
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return domain.StaffPrincipal{}, domain.E(domain.KindUnauthenticated, "expected bearer token")
	}

	principal, err := a.staff.FindByToken(r.Context(), strings.TrimSpace(token))
	if err != nil {
		return domain.StaffPrincipal{}, err
	}
	return *principal, nil
}
