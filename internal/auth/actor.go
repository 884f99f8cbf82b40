package auth

// Role adalah nama group/role milik user, mengikuti penamaan group di sistem lama.
type Role string

const (
	RoleCustomer       Role = "customer"
	RoleProductManager Role = "product_manager"
	RoleSalesManager   Role = "sales_manager"
)

// Actor adalah identitas eksplisit yang dioper ke setiap operasi core.
// Tidak ada lookup "current user" tersembunyi di service layer;
// semua predikat role adalah fungsi murni atas struct ini.
type Actor struct {
	UserID string
	Email  string
	Roles  []Role
}

func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsCustomer() bool {
	return a.HasRole(RoleCustomer)
}

func (a Actor) IsProductManager() bool {
	return a.HasRole(RoleProductManager)
}

func (a Actor) IsSalesManager() bool {
	return a.HasRole(RoleSalesManager)
}

// IsOwner true jika actor adalah pemilik resource dengan userID tersebut.
func (a Actor) IsOwner(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}
