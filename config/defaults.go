package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/parley",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Ollama: OllamaConfig{
			Host:         "http://localhost:11434",
			DefaultModel: "llama3.1:latest",
		},
		CurrentProvider: "ollama",
		BotName:         "Assistant",
		UserName:        "User",
		ColorScheme:     "light",
		Security: SecurityConfig{
			Method: "plaintext",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Parley System Configuration
# Location: ~/.config/parley/settings.toml
# This file uses TOML format: https://toml.io

# Directory where chats, credentials and user config are stored
data_directory = "~/.local/share/parley"
`
}

func GenerateUserConfigTemplate() string {
	return `# Parley User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Active provider slug (see the provider menu for available slugs)
current_provider = "ollama"

# Talk to the local model runtime instead of a remote provider
local_mode = false

# Display names used as message roles in stored chats
bot_name = "Assistant"
user_name = "User"

# UI appearance: "light" or "dark"
color_scheme = "light"

# Default system prompt for new chats (optional)
default_system_prompt = ""

[ollama]
# Ollama server URL
host = "http://localhost:11434"

# Default model for the Ollama provider and the local runtime
default_model = "llama3.1:latest"

[security]
# Credential storage: "plaintext" or "ssh_key"
method = "plaintext"
`
}
