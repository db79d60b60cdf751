package model

import "testing"

// 测试内容：各角色的权限逐级包含，封禁角色没有任何权限。
func TestRoleAuthorities(t *testing.T) {
	cases := []struct {
		role Role
		has  []Authority
		lack []Authority
	}{
		{role: RoleBanned, lack: []Authority{AuthorityUpload, AuthorityReact, AuthorityBanUser}},
		{role: RoleOrdinary, has: []Authority{AuthorityUpload, AuthoritySubscribe, AuthorityReact}, lack: []Authority{AuthorityBanPublication, AuthorityManageAdmins}},
		{role: RoleAdmin, has: []Authority{AuthorityUpload, AuthorityBanPublication, AuthorityBanUser}, lack: []Authority{AuthorityManageAdmins}},
		{role: RoleSuperAdmin, has: []Authority{AuthorityUpload, AuthorityBanUser, AuthorityManageAdmins}},
	}
	for _, tc := range cases {
		for _, a := range tc.has {
			if !tc.role.Has(a) {
				t.Fatalf("期望 %s 拥有 %s", tc.role, a)
			}
		}
		for _, a := range tc.lack {
			if tc.role.Has(a) {
				t.Fatalf("期望 %s 不拥有 %s", tc.role, a)
			}
		}
	}
	if got := len(RoleBanned.AuthorityNames()); got != 0 {
		t.Fatalf("期望封禁角色权限为空，实际为 %d", got)
	}
}

// 测试内容：Authorities 返回副本，修改结果不影响权限表。
func TestRoleAuthoritiesReturnsCopy(t *testing.T) {
	list := RoleOrdinary.Authorities()
	list[0] = AuthorityManageAdmins
	if RoleOrdinary.Has(AuthorityManageAdmins) {
		t.Fatalf("期望权限表不被外部修改")
	}
}

// 测试内容：未知角色无效且没有权限。
func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleBanned, RoleOrdinary, RoleAdmin, RoleSuperAdmin} {
		if !r.Valid() {
			t.Fatalf("期望 %s 有效", r)
		}
	}
	unknown := Role("ROOT")
	if unknown.Valid() {
		t.Fatalf("期望未知角色无效")
	}
	if unknown.Authorities() != nil {
		t.Fatalf("期望未知角色没有权限，实际为 %v", unknown.Authorities())
	}
}

// 测试内容：图片类型与表情类型的解析不区分大小写，未知值被拒绝。
func TestParseTypes(t *testing.T) {
	if pt, ok := ParsePictureType(" jpg "); !ok || pt != PictureTypeJPEG {
		t.Fatalf("期望 jpg 解析为 JPEG，实际为 %q %v", pt, ok)
	}
	if PictureTypePNG.MimeType() != "image/png" {
		t.Fatalf("期望 image/png，实际为 %s", PictureTypePNG.MimeType())
	}
	if _, ok := ParsePictureType("tiff"); ok {
		t.Fatalf("期望 tiff 被拒绝")
	}
	if PictureType("TIFF").MimeType() != "application/octet-stream" {
		t.Fatalf("期望未知类型返回 application/octet-stream")
	}
	if rt, ok := ParseReactionType("like"); !ok || rt != ReactionLike {
		t.Fatalf("期望 like 解析为 LIKE，实际为 %q %v", rt, ok)
	}
	if _, ok := ParseReactionType("LOVE"); ok {
		t.Fatalf("期望 LOVE 被拒绝")
	}
}
