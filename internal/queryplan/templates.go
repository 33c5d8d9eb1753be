package queryplan

import "github.com/mlevkin/leakradar/internal/models"

// template is one search pattern instantiated per domain variation.
// Priority orders payloads within a source: lower values are higher
// value and run first, before a rate limit can cut the plan short.
type template struct {
	format   string
	priority int
	sources  []models.Source
}

var bothSources = []models.Source{models.SourceGitHub, models.SourceGoogle}
var githubOnly = []models.Source{models.SourceGitHub}
var googleOnly = []models.Source{models.SourceGoogle}

// catalogue is the fixed set of security-relevant search templates.
// %s is replaced with a domain variation.
var catalogue = []template{
	// Credential terms
	{format: `%s password`, priority: 1, sources: bothSources},
	{format: `%s secret`, priority: 1, sources: bothSources},
	{format: `%s api_key`, priority: 1, sources: bothSources},
	{format: `%s apikey`, priority: 2, sources: githubOnly},
	{format: `%s token`, priority: 2, sources: githubOnly},
	{format: `%s authorization bearer`, priority: 3, sources: githubOnly},

	// Cloud key signatures
	{format: `%s AKIA`, priority: 1, sources: githubOnly},
	{format: `%s aws_secret_access_key`, priority: 1, sources: githubOnly},
	{format: `%s AIza`, priority: 2, sources: githubOnly},
	{format: `%s private_key BEGIN`, priority: 1, sources: githubOnly},

	// Config file patterns
	{format: `%s filename:.env`, priority: 1, sources: githubOnly},
	{format: `%s filename:config.json`, priority: 2, sources: githubOnly},
	{format: `%s filename:settings.py`, priority: 3, sources: githubOnly},
	{format: `%s filename:application.properties`, priority: 3, sources: githubOnly},
	{format: `%s filename:docker-compose.yml`, priority: 3, sources: githubOnly},
	{format: `%s ext:env | ext:cfg | ext:ini`, priority: 2, sources: googleOnly},

	// Database connection URI schemes
	{format: `%s mongodb://`, priority: 2, sources: githubOnly},
	{format: `%s postgres://`, priority: 2, sources: githubOnly},
	{format: `%s mysql://`, priority: 2, sources: githubOnly},
	{format: `%s redis://`, priority: 3, sources: githubOnly},
	{format: `%s jdbc:`, priority: 3, sources: githubOnly},

	// Backup and dump files
	{format: `site:%s ext:sql | ext:dump | ext:bak`, priority: 2, sources: googleOnly},
	{format: `site:%s ext:log`, priority: 3, sources: googleOnly},
	{format: `site:%s ext:old | ext:backup`, priority: 3, sources: googleOnly},

	// Exposed admin panels
	{format: `site:%s inurl:admin`, priority: 3, sources: googleOnly},
	{format: `site:%s inurl:login intitle:"index of"`, priority: 3, sources: googleOnly},
	{format: `site:%s intitle:"phpmyadmin"`, priority: 4, sources: googleOnly},

	// External paste sites
	{format: `site:pastebin.com %s`, priority: 2, sources: googleOnly},
	{format: `site:gist.github.com %s`, priority: 2, sources: googleOnly},
	{format: `site:justpaste.it %s`, priority: 4, sources: googleOnly},
}
