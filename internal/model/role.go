package model

// Role 用户角色，每个角色对应一组固定的权限。
type Role string

const (
	RoleBanned     Role = "BANNED"
	RoleOrdinary   Role = "ORDINARY"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Authority 单个权限位
type Authority string

const (
	AuthorityUpload         Authority = "UPLOAD_AUTHORITY"
	AuthoritySubscribe      Authority = "SUBSCRIBE_AUTHORITY"
	AuthorityReact          Authority = "REACT_AUTHORITY"
	AuthorityBanPublication Authority = "BAN_PUBLICATION_AUTHORITY"
	AuthorityBanUser        Authority = "BAN_USER_AUTHORITY"
	AuthorityManageAdmins   Authority = "MANAGE_ADMINS_AUTHORITY"
)

type roleAuthorities struct {
	role        Role
	authorities []Authority
}

// roleTable 角色 -> 权限静态表，逐级包含：ORDINARY ⊂ ADMIN ⊂ SUPER_ADMIN。
var roleTable = [...]roleAuthorities{
	{role: RoleBanned, authorities: nil},
	{role: RoleOrdinary, authorities: []Authority{
		AuthorityUpload, AuthoritySubscribe, AuthorityReact,
	}},
	{role: RoleAdmin, authorities: []Authority{
		AuthorityUpload, AuthoritySubscribe, AuthorityReact,
		AuthorityBanPublication, AuthorityBanUser,
	}},
	{role: RoleSuperAdmin, authorities: []Authority{
		AuthorityUpload, AuthoritySubscribe, AuthorityReact,
		AuthorityBanPublication, AuthorityBanUser,
		AuthorityManageAdmins,
	}},
}

// Valid 判断角色是否为已知取值
func (r Role) Valid() bool {
	for _, entry := range roleTable {
		if entry.role == r {
			return true
		}
	}
	return false
}

// Authorities 返回角色权限的副本；未知角色没有任何权限。
func (r Role) Authorities() []Authority {
	for _, entry := range roleTable {
		if entry.role == r {
			out := make([]Authority, len(entry.authorities))
			copy(out, entry.authorities)
			return out
		}
	}
	return nil
}

func (r Role) Has(authority Authority) bool {
	for _, a := range r.Authorities() {
		if a == authority {
			return true
		}
	}
	return false
}

// AuthorityNames 以字符串形式返回权限，用于写入 JWT。
func (r Role) AuthorityNames() []string {
	authorities := r.Authorities()
	names := make([]string, 0, len(authorities))
	for _, a := range authorities {
		names = append(names, string(a))
	}
	return names
}
