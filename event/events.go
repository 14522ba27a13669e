package event

const (
	// RoleUpdated ロールが作成・更新された
	// Fields:
	// 	role_name: string
	RoleUpdated = "role.updated"
	// RoleDeleted ロールが削除された
	// Fields:
	// 	role_name: string
	RoleDeleted = "role.deleted"
	// RoleAssigned ユーザーにロールが割り当てられた
	// Fields:
	// 	user_id: uuid.UUID
	// 	role_name: string
	RoleAssigned = "role.assigned"
	// RoleUnassigned ユーザーのロール割り当てが解除された
	// Fields:
	// 	user_id: uuid.UUID
	RoleUnassigned = "role.unassigned"
	// HookTriggered フックが発火された
	// Fields:
	// 	hook_name: string
	// 	hook_type: string
	HookTriggered = "hook.triggered"
)
