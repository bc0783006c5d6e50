package installer

// Settings collects everything the wizard writes to the runtime .env file.
type Settings struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
}

type InstallState struct {
	Settings Settings
}

func NewInstallState() *InstallState {
	return &InstallState{}
}
