package app

const TopicUserCreated = "user:created"
const TopicUserRegistered = "user:registered"
const TopicUserDisabled = "user:disabled"
const TopicUserDeleted = "user:deleted"
const TopicAuthLogin = "auth:login"
const TopicAuthLoginFailed = "auth:login:failed"
const TopicAuthLogout = "auth:logout"
const TopicTestGenerated = "test:generated"
const TopicAttemptGraded = "attempt:graded"
const TopicNotificationCreated = "notification:created"
