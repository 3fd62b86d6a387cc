// Package config loads discordops settings.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and DISCORDOPS_* environment variables. Nested keys
// map to variables by upper-casing and replacing dots with underscores, so
// discord.max_retries is DISCORDOPS_DISCORD_MAX_RETRIES.
//
// String secrets may be secretref values ("secretref:env:BOT_TOKEN",
// "secretref:file:bot_token") and are resolved through package secret.
package config
