package config

type Seed struct {
	AdminName     string `env:"SEED_ADMIN_NAME" envDefault:"Admin User"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@retailpos.local"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD,required"`

	StaffName     string `env:"SEED_STAFF_NAME" envDefault:"Staff User"`
	StaffEmail    string `env:"SEED_STAFF_EMAIL" envDefault:"staff@retailpos.local"`
	StaffPassword string `env:"SEED_STAFF_PASSWORD,required"`

	Products bool `env:"SEED_PRODUCTS" envDefault:"true"`
}
