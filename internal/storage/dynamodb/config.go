package dynamodb

type Config struct {
	Region string `yaml:"region"`

	// Endpoint overrides the AWS endpoint, e.g. for DynamoDB Local.
	Endpoint string `yaml:"endpoint"`

	Auth struct {
		AccessKey string `yaml:"accessKey"`
		SecretKey string `yaml:"secretKey"`
	} `yaml:"auth"`
}
