package main

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// envVarPrefix is the prefix for all past environment variables
const envVarPrefix = "PAST_"

// getEnvBool retrieves a boolean value from an environment variable
// If the variable is not set, returns the defaultValue
func getEnvBool(name string, defaultValue bool) bool {
	val := os.Getenv(name)
	if val == "" {
		return defaultValue
	}
	val = strings.ToLower(val)
	return val == "true" || val == "1" || val == "yes"
}

// getEnvInt retrieves an integer value from an environment variable
// If the variable is not set or invalid, returns the defaultValue
func getEnvInt(name string, defaultValue int) int {
	val := os.Getenv(name)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvString retrieves a string value from an environment variable
// If the variable is not set, returns the defaultValue
func getEnvString(name string, defaultValue string) string {
	val := os.Getenv(name)
	if val == "" {
		return defaultValue
	}
	return val
}

// listPastEnvVars returns the PAST_* variables currently set, sorted by name
func listPastEnvVars() []string {
	var result []string
	for _, env := range os.Environ() {
		name, _, ok := strings.Cut(env, "=")
		if ok && strings.HasPrefix(name, envVarPrefix) {
			result = append(result, env)
		}
	}
	sort.Strings(result)
	return result
}
