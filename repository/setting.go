package repository

// SettingRepository プラグイン設定リポジトリ
type SettingRepository interface {
	// GetSetting 指定したキーの設定値を取得します
	//
	// 存在しないキーを指定した場合、ErrNotFoundを返します。
	// DBによるエラーを返すことがあります。
	GetSetting(key string) (string, error)
	// SetSetting 指定したキーに設定値を保存します
	//
	// DBによるエラーを返すことがあります。
	SetSetting(key, value string) error
}
