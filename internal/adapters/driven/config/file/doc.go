// Package file provides the TOML configuration store.
//
// Settings are read from ~/.threadrag/config.toml. A .env file next to the
// config file (and one in the working directory) is loaded into the process
// environment first; environment variables then override file values:
//
//   - OPENAI_API_KEY: embedding and completion API key
//   - SLACK_TOKEN: Slack bot token
//   - SLACK_APP_TOKEN: Slack app-level token for the bot's Socket Mode connection
//   - GITHUB_TOKEN: GitHub personal access token
//   - THREADRAG_DATA_DIR: data directory
package file
