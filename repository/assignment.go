package repository

import "github.com/gofrs/uuid"

// AssignmentRepository ユーザーへのロール割り当てリポジトリ
type AssignmentRepository interface {
	// GetUserRoleName ユーザーに明示的に割り当てられたロール名を取得します
	//
	// 明示的な割り当てが無い場合、ErrNotFoundを返します。
	// 引数にuuid.Nilを指定した場合、ErrNilIDを返します。
	// DBによるエラーを返すことがあります。
	GetUserRoleName(userID uuid.UUID) (string, error)
	// SetUserRole ユーザーにロールを明示的に割り当てます。既存の割り当ては上書きされます
	//
	// 引数にuuid.Nilまたは空のロール名を指定した場合、ErrNilIDを返します。
	// DBによるエラーを返すことがあります。
	SetUserRole(userID uuid.UUID, roleName string) error
	// ClearUserRole ユーザーの明示的なロール割り当てを解除します。割り当てが無い場合は何もしません
	//
	// 引数にuuid.Nilを指定した場合、ErrNilIDを返します。
	// DBによるエラーを返すことがあります。
	ClearUserRole(userID uuid.UUID) error
	// GetRoleMembers 指定したロールが明示的に割り当てられているユーザーのIDを取得します
	//
	// DBによるエラーを返すことがあります。
	GetRoleMembers(roleName string) ([]uuid.UUID, error)
	// ListAssignments 全ての明示的なロール割り当てを取得します
	//
	// DBによるエラーを返すことがあります。
	ListAssignments() (map[uuid.UUID]string, error)
}
