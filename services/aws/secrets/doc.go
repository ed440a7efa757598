// Package secrets reads storage credentials from AWS Secrets Manager.
//
// Only reads are supported. Secret values are never logged; log records carry
// the secret name and the outcome.
//
// Required IAM permissions:
//   - secretsmanager:GetSecretValue
//   - kms:Decrypt, when the secret uses a customer-managed KMS key
package secrets
