package rolegate

import (
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// RoleDefinition 設定ファイル上の1ロールの定義
type RoleDefinition struct {
	Title       string         `json:"title" yaml:"title"`
	Extends     []string       `json:"extends" yaml:"extends"`
	Permissions PermissionTree `json:"permissions" yaml:"permissions"`
}

// Validate implements validation.Validatable interface.
func (d RoleDefinition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Extends, validation.Each(validation.Required, validation.Length(1, 30))),
	)
}

// RolesConfig ロール名からロール定義への宣言的なマッピング
type RolesConfig map[string]RoleDefinition

// Validate implements validation.Validatable interface.
func (c RolesConfig) Validate() error {
	for name, def := range c {
		if err := validation.Validate(name, validation.Required, validation.Length(1, 30)); err != nil {
			return err
		}
		if err := def.Validate(); err != nil {
			return err
		}
		for _, rules := range def.Permissions {
			for _, rule := range rules.All() {
				if err := rule.Validate(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// LoadRolesConfig YAML形式のロール設定を読み込み、検証します
func LoadRolesConfig(r io.Reader) (RolesConfig, error) {
	var c RolesConfig
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if err == io.EOF {
			return RolesConfig{}, nil
		}
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
