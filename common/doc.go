// Package common holds process-wide helpers shared by the commands.
package common
