package wrappers

// GlobalTables are queried once per run, independent of region.
var GlobalTables = []string{
	// Identity and Access Management
	"oci_identity_tenancy",
	"oci_identity_user",
	"oci_identity_group",
	"oci_identity_policy",
	"oci_identity_compartment",
	"oci_identity_api_key",
	"oci_identity_auth_token",
	"oci_identity_authentication_policy",
	"oci_identity_availability_domain",
	"oci_identity_customer_secret_key",
	"oci_identity_db_credential",
	"oci_identity_domain",
	"oci_identity_dynamic_group",
	"oci_identity_network_source",
	"oci_identity_tag_default",
	"oci_identity_tag_namespace",
	"oci_region",
}

// RegionalTables are queried once per configured region.
// oci_bastion_session, oci_certificates_authority_bundle, oci_kms_key_version,
// oci_mysql_db_system and oci_resource_search are left out: the plugin either
// lacks compartment_id on them or requires extra quals.
var RegionalTables = []string{
	"oci_adm_knowledge_base",
	"oci_adm_vulnerability_audit",
	"oci_analytics_instance",
	"oci_apigateway_api",
	"oci_application_migration_migration",
	"oci_application_migration_source",
	"oci_artifacts_container_image",
	"oci_artifacts_container_image_signature",
	"oci_artifacts_container_repository",
	"oci_artifacts_generic_artifact",
	"oci_artifacts_repository",
	"oci_autoscaling_auto_scaling_configuration",
	"oci_autoscaling_auto_scaling_policy",
	"oci_bastion_bastion",
	"oci_bds_bds_instance",
	"oci_budget_alert_rule",
	"oci_budget_budget",
	"oci_certificates_management_association",
	"oci_certificates_management_ca_bundle",
	"oci_certificates_management_certificate",
	"oci_certificates_management_certificate_authority",
	"oci_certificates_management_certificate_authority_version",
	"oci_certificates_management_certificate_version",
	"oci_cloud_guard_configuration",
	"oci_cloud_guard_detector_recipe",
	"oci_cloud_guard_managed_list",
	"oci_cloud_guard_responder_recipe",
	"oci_cloud_guard_target",
	"oci_container_instances_container",
	"oci_container_instances_container_instance",
	"oci_containerengine_cluster",
	"oci_core_instance",
	"oci_core_instance_configuration",
	"oci_core_instance_metric_cpu_utilization",
	"oci_core_instance_metric_cpu_utilization_daily",
	"oci_core_instance_metric_cpu_utilization_hourly",
	"oci_core_image",
	"oci_core_image_custom",
	"oci_core_cluster_network",
	"oci_core_vcn",
	"oci_core_subnet",
	"oci_core_internet_gateway",
	"oci_core_nat_gateway",
	"oci_core_service_gateway",
	"oci_core_local_peering_gateway",
	"oci_core_drg",
	"oci_core_route_table",
	"oci_core_security_list",
	"oci_core_network_security_group",
	"oci_core_dhcp_options",
	"oci_core_public_ip",
	"oci_core_public_ip_pool",
	"oci_core_vnic_attachment",
	"oci_core_volume",
	"oci_core_volume_attachment",
	"oci_core_volume_backup",
	"oci_core_volume_backup_policy",
	"oci_core_volume_default_backup_policy",
	"oci_core_volume_group",
	"oci_core_block_volume_replica",
	"oci_core_boot_volume",
	"oci_core_boot_volume_attachment",
	"oci_core_boot_volume_backup",
	"oci_core_boot_volume_replica",
	"oci_core_boot_volume_metric_read_ops",
	"oci_core_boot_volume_metric_read_ops_daily",
	"oci_core_boot_volume_metric_read_ops_hourly",
	"oci_core_boot_volume_metric_write_ops",
	"oci_core_boot_volume_metric_write_ops_daily",
	"oci_core_boot_volume_metric_write_ops_hourly",
	"oci_core_load_balancer",
	"oci_core_network_load_balancer",
	"oci_database_db_system",
	"oci_database_db_home",
	"oci_database_db",
	"oci_database_autonomous_database",
	"oci_database_autonomous_db_metric_cpu_utilization",
	"oci_database_autonomous_db_metric_cpu_utilization_daily",
	"oci_database_autonomous_db_metric_cpu_utilization_hourly",
	"oci_database_autonomous_db_metric_storage_utilization",
	"oci_database_autonomous_db_metric_storage_utilization_daily",
	"oci_database_autonomous_db_metric_storage_utilization_hourly",
	"oci_database_cloud_vm_cluster",
	"oci_database_exadata_infrastructure",
	"oci_database_pluggable_database",
	"oci_database_software_image",
	"oci_devops_project",
	"oci_devops_repository",
	"oci_dns_rrset",
	"oci_dns_tsig_key",
	"oci_dns_zone",
	"oci_events_rule",
	"oci_file_storage_file_system",
	"oci_file_storage_mount_target",
	"oci_file_storage_snapshot",
	"oci_functions_application",
	"oci_functions_function",
	"oci_kms_key",
	"oci_kms_vault",
	"oci_logging_log",
	"oci_logging_log_group",
	"oci_logging_search",
	"oci_mysql_backup",
	"oci_mysql_channel",
	"oci_mysql_configuration",
	"oci_mysql_configuration_custom",
	"oci_mysql_db_system_metric_connections",
	"oci_mysql_db_system_metric_connections_daily",
	"oci_mysql_db_system_metric_connections_hourly",
	"oci_mysql_db_system_metric_cpu_utilization",
	"oci_mysql_db_system_metric_cpu_utilization_daily",
	"oci_mysql_db_system_metric_cpu_utilization_hourly",
	"oci_mysql_db_system_metric_memory_utilization",
	"oci_mysql_db_system_metric_memory_utilization_daily",
	"oci_mysql_heat_wave_cluster",
	"oci_network_firewall_firewall",
	"oci_network_firewall_policy",
	"oci_nosql_table",
	"oci_nosql_table_metric_read_throttle_count",
	"oci_nosql_table_metric_read_throttle_count_daily",
	"oci_nosql_table_metric_read_throttle_count_hourly",
	"oci_nosql_table_metric_storage_utilization",
	"oci_nosql_table_metric_storage_utilization_daily",
	"oci_nosql_table_metric_storage_utilization_hourly",
	"oci_nosql_table_metric_write_throttle_count",
	"oci_nosql_table_metric_write_throttle_count_daily",
	"oci_nosql_table_metric_write_throttle_count_hourly",
	"oci_objectstorage_bucket",
	"oci_objectstorage_object",
	"oci_ons_notification_topic",
	"oci_ons_subscription",
	"oci_queue_queue",
	"oci_resourcemanager_stack",
	"oci_streaming_stream",
	"oci_vault_secret",
}

// tenantLevelTables have no compartment_id column, so a compartment filter
// must never be applied to them.
var tenantLevelTables = map[string]bool{
	"oci_identity_user":                                         true,
	"oci_identity_group":                                        true,
	"oci_identity_api_key":                                      true,
	"oci_identity_auth_token":                                   true,
	"oci_identity_authentication_policy":                        true,
	"oci_identity_customer_secret_key":                          true,
	"oci_identity_db_credential":                                true,
	"oci_identity_dynamic_group":                                true,
	"oci_identity_network_source":                               true,
	"oci_region":                                                true,
	"oci_core_volume_default_backup_policy":                     true,
	"oci_mysql_heat_wave_cluster":                               true,
	"oci_objectstorage_object":                                  true,
	"oci_bastion_session":                                       true,
	"oci_certificates_authority_bundle":                         true,
	"oci_certificates_management_certificate_authority_version": true,
	"oci_certificates_management_certificate_version":           true,
}

// IsTenantLevel reports whether table lives at tenancy scope.
func IsTenantLevel(table string) bool {
	return tenantLevelTables[table]
}

// accessErrorMarkers identify authentication or authorization failures in
// query-engine stderr.
var accessErrorMarkers = []string{
	"InvalidAccessException",
	"accessNotConfigured",
	"AccessDeniedException",
	"Authorization_RequestDenied",
	"invalid_client",
	"InvalidSignatureException",
	"InvalidAuthenticationToken",
	"GetCallerIdentity",
	"UnknownError",
	"NotAuthorizedOrNotFound",
	"AuthorizationFailed",
	"Forbidden",
	"NotAuthenticated",
	"FREE_TIER_NOT_SUPPORTED",
	"InvalidParameter",
	"no such host",
	"ServiceError",
	"Cloudguard subscription is not available",
	"subscription is not available",
	"missing 2 required quals",
	"missing 3 required quals",
	"compartmentId is not available",
	`column "compartment_id" does not exist`,
	"SQLSTATE 42703",
	"SQLSTATE HV000",
}
