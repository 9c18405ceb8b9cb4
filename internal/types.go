package internal

// ContainerName represents a unique Docker container name for one fixture run.
type ContainerName string

// ImageName represents a Docker image name.
type ImageName string

// DatabaseName represents the name of the database created inside the image.
type DatabaseName string

// Command represents the command and arguments to execute against the fixture.
type Command []string

// Statements represents SQL statements executed after the data files are loaded.
type Statements []string
