// Package secret resolves the Discord bot token and other credentials
// held in configuration values.
//
// A value is first expanded against the environment (ExpandEnv), then any
// references it contains are replaced by a Provider's value:
//
//	secretref:file:discord_bot_token
//	secretref:env:DISCORD_BOT_TOKEN
//	Bot secretref:env:DISCORD_BOT_TOKEN
//
// EnvProvider and FileProvider are built in. Values never appear in errors.
package secret
