package config

type Config struct {
	// YAML, перекрывающий встроенные тексты. Пусто - только встроенные.
	Path string `env:"TEXTS_PATH"`
}
