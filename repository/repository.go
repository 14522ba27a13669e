package repository

// Repository リポジトリ
type Repository interface {
	// Sync リポジトリと実際のデータベースを同期します
	//
	// スキーママイグレーションを実行し、予約ロールを初期投入します。
	Sync() error
	RoleRepository
	AssignmentRepository
	SettingRepository
}
